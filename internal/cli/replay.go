package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"insights/internal/agentevent"
	"insights/internal/session"
	"insights/internal/transport"
)

// runReplay builds the handler for the replay command.
func runReplay(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: search for .insights/config.yml)")
		lenient := flags.Bool("lenient", false, "Skip malformed lines instead of failing")
		uiMode := flags.String("ui", "", "UI mode: auto|live|plain (default from config)")
		verbose := flags.Bool("verbose", false, "Enable verbose logging")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if flags.NArg() != 1 {
			fmt.Fprintln(stderr, "exactly one event log is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, _, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Config error:\n%v\n", err)
			return ExitError
		}

		logPath := flags.Arg(0)
		file, err := os.Open(logPath)
		if err != nil {
			fmt.Fprintf(stderr, "Replay failed: %v\n", err)
			return ExitError
		}
		defer file.Close()

		var logOpts []agentevent.LogOption
		if *lenient {
			logOpts = append(logOpts, agentevent.Lenient())
		}
		reader := agentevent.NewLogReader(file, logOpts...)

		parts, err := newSession(cfg, &transport.Recorder{}, nil)
		if err != nil {
			fmt.Fprintf(stderr, "Replay failed: %v\n", err)
			return ExitError
		}
		ui, err := startPresenter(cfg, *uiMode, *verbose, filepath.Base(logPath), parts, stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		runErr := parts.facade.Run(ctx, reader)
		if skipped := reader.Skipped(); skipped > 0 {
			ui.notice(stderr, fmt.Sprintf("Skipped %d malformed lines", skipped))
		}
		ui.finish()
		if runErr != nil {
			fmt.Fprintf(stderr, "Replay failed: %v\n", runErr)
			return ExitError
		}

		printSummary(stdout, parts.facade)
		return ExitOK
	}
}

// printSummary lists every thread with its final lifecycle and SQL.
func printSummary(w io.Writer, facade *session.Facade) {
	threads := facade.Threads()
	fmt.Fprintf(w, "Threads: %d\n", len(threads))
	for _, threadID := range threads {
		line := fmt.Sprintf("- %s %s", threadID, facade.StatusFor(threadID))
		if art, ok := facade.Artifact(threadID); ok {
			line += fmt.Sprintf(" v%d", art.Version)
			if art.Title != "" {
				line += " " + art.Title
			}
			fmt.Fprintln(w, line)
			fmt.Fprintln(w, indent(art.SQL))
			continue
		}
		fmt.Fprintln(w, line)
	}
}
