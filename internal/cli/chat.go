package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"insights/internal/agentevent"
	"insights/internal/duckdb"
	"insights/internal/editor"
	"insights/internal/eventtypes"
	"insights/internal/session"
	"insights/internal/transport"
)

const defaultChatTimeout = 2 * time.Minute

// runChat builds the handler for the chat command.
func runChat(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		specPath := flags.String("spec", "", "Path to config file (default: search for .insights/config.yml)")
		tabID := flags.String("tab", "tab-1", "Editor tab the conversation belongs to")
		title := flags.String("title", "", "Tab title sent with the message")
		query := flags.String("query", "", "Current tab query sent with the message")
		warehouse := flags.String("warehouse", "", "Warehouse path (overrides config)")
		timeout := flags.Duration("timeout", defaultChatTimeout, "How long to wait for the agent")
		uiMode := flags.String("ui", "", "UI mode: auto|live|plain (default from config)")
		verbose := flags.Bool("verbose", false, "Enable verbose logging")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		message := strings.TrimSpace(strings.Join(flags.Args(), " "))
		if message == "" {
			fmt.Fprintln(stderr, "a message is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if strings.TrimSpace(*tabID) == "" {
			fmt.Fprintln(stderr, "--tab must not be empty")
			return ExitUsage
		}

		cfg, _, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Config error:\n%v\n", err)
			return ExitError
		}
		logger := verboseLogger{enabled: *verbose, writer: stderr, noColor: cfg.UI.NoColor}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if *timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *timeout)
			defer cancel()
		}

		db, path, err := openWarehouse(ctx, cfg, *warehouse)
		if err != nil {
			fmt.Fprintf(stderr, "Open warehouse failed: %v\n", err)
			return ExitError
		}
		defer db.Close()
		logger.log(styleDefault, "warehouse %s", path)

		sender := &transport.HTTPSender{
			BaseURL: cfg.Agent.URL,
			Path:    cfg.Agent.SendPath,
			UserID:  cfg.Agent.UserID,
		}
		parts, err := newSession(cfg, sender, warehouseProvider(cfg, db))
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}

		streamURL, err := transport.StreamURL(cfg.Agent.URL, cfg.Agent.StreamPath)
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		logger.log(styleDefault, "dialing %s", streamURL)
		stream, err := transport.DialStream(ctx, streamURL, nil)
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		defer stream.Close()

		ed := editor.New(parts.facade.Artifacts(),
			editor.WithRunner(editor.WarehouseRunner(db, duckdb.DefaultRowLimit)),
			editor.WithAutoRun(cfg.AutoRun()),
		)
		threadID, _ := parts.facade.FocusTab(*tabID)
		ed.Open(*tabID, threadID, *title)
		if err := ed.Focus(*tabID); err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		if *query != "" {
			_ = ed.SetQuery(*tabID, *query)
		}
		logger.log(styleThread, "tab %s on thread %s", *tabID, threadID)

		catalog, err := parts.facade.EventTypes(ctx)
		if err != nil {
			logger.log(styleError, "event types unavailable: %v", err)
			catalog = eventtypes.Catalog{}
		}
		state, err := ed.Capture(*tabID, catalog, parts.facade.Now())
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		parts.facade.SetClientStateSnapshot(threadID, state)

		ended := make(chan struct{})
		var endOnce sync.Once
		parts.relay.add(session.ObserverFunc(func(ev agentevent.Event) {
			if ev.ThreadID() == threadID && ev.Kind() == agentevent.KindStreamEnded {
				endOnce.Do(func() { close(ended) })
			}
		}))

		ui, err := startPresenter(cfg, *uiMode, *verbose, streamURL, parts, stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}

		runCtx, cancelRun := context.WithCancel(ctx)
		defer cancelRun()
		runErr := make(chan error, 1)
		go func() {
			runErr <- parts.facade.Run(runCtx, stream)
		}()

		if err := parts.facade.Send(ctx, threadID, message); err != nil {
			ui.finish()
			fmt.Fprintf(stderr, "Send failed: %v\n", err)
			return ExitError
		}
		ui.refresh(threadID)

		var waitErr error
		select {
		case <-ended:
		case err := <-runErr:
			if err == nil {
				err = errors.New("event stream closed before the agent finished")
			}
			waitErr = err
		case <-ctx.Done():
			waitErr = fmt.Errorf("waiting for agent: %w", ctx.Err())
		}
		cancelRun()
		ui.finish()
		if waitErr != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", waitErr)
			return ExitError
		}

		printReply(stdout, parts.facade.Messages(threadID))
		return printTabUpdate(ctx, ed, stdout, stderr)
	}
}

// printReply prints the last assistant text on the thread.
func printReply(w io.Writer, messages []transport.Message) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != transport.RoleAssistant {
			continue
		}
		if text := strings.TrimSpace(messages[i].Text()); text != "" {
			fmt.Fprintln(w, text)
		}
		return
	}
}

// printTabUpdate inserts the generated SQL into the tab and prints it with
// its result when auto-run is on.
func printTabUpdate(ctx context.Context, ed *editor.Editor, stdout, stderr io.Writer) int {
	update, ok, err := ed.Sync(ctx)
	if !ok {
		fmt.Fprintln(stdout, "No SQL generated.")
		return ExitOK
	}
	if update.Artifact.Title != "" {
		fmt.Fprintf(stdout, "%s\n", update.Artifact.Title)
	}
	fmt.Fprintf(stdout, "SQL:\n%s\n", indent(update.Artifact.SQL))
	if err != nil {
		fmt.Fprintf(stderr, "Query failed: %v\n", err)
		return ExitError
	}
	if update.Ran {
		printResult(stdout, update.Result)
	}
	return ExitOK
}
