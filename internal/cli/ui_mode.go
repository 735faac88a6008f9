package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	uiModeAuto  = "auto"
	uiModeLive  = "live"
	uiModePlain = "plain"
)

// uiModeDecision captures whether to use the live UI.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode picks the live thread table or plain lines. An empty flag
// falls back to the configured mode. Verbose output is always plain.
func resolveUIMode(flagMode, configMode string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	mode := strings.ToLower(strings.TrimSpace(flagMode))
	if mode == "" {
		mode = strings.ToLower(strings.TrimSpace(configMode))
	}
	if mode == "" {
		mode = uiModeAuto
	}
	switch mode {
	case uiModeAuto, uiModeLive, uiModePlain:
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	if verbose || mode == uiModePlain {
		return uiModeDecision{}, nil
	}
	tty := isTerminal(stdout)
	if mode == uiModeLive && !tty {
		return uiModeDecision{
			warning: "Live UI requested but stdout is not a TTY; printing plain progress.",
		}, nil
	}
	return uiModeDecision{useLive: tty}, nil
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
