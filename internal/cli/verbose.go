package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const verbosePrefix = "[verbose]"

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGray   = "\x1b[90m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiBlue   = "\x1b[34m"
	ansiYellow = "\x1b[33m"
)

type verboseStyle int

const (
	styleDefault verboseStyle = iota
	styleThread
	styleSQL
	styleLoading
	styleError
)

// verboseLogger writes [verbose] lines when enabled.
type verboseLogger struct {
	enabled bool
	writer  io.Writer
	noColor bool
}

func (l verboseLogger) log(style verboseStyle, format string, args ...any) {
	logVerbose(l.enabled, l.writer, l.noColor, style, format, args...)
}

func logVerbose(enabled bool, writer io.Writer, noColor bool, style verboseStyle, format string, args ...any) {
	if !enabled || writer == nil {
		return
	}
	palette := paletteFor(writer, noColor)
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(writer, "%s %s\n", palette.prefix(verbosePrefix), palette.apply(style, line))
}

type verbosePalette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) verbosePalette {
	if noColor {
		return verbosePalette{enabled: false}
	}
	return verbosePalette{enabled: shouldUseStyling(writer)}
}

func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	return isTerminal(writer)
}

func (p verbosePalette) prefix(text string) string {
	if !p.enabled {
		return text
	}
	return ansiDim + ansiGray + text + ansiReset
}

func (p verbosePalette) apply(style verboseStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleThread:
		return ansiBold + ansiBlue + text + ansiReset
	case styleSQL:
		return ansiBold + ansiGreen + text + ansiReset
	case styleLoading:
		return ansiYellow + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
