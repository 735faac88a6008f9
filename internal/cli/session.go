package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"insights/internal/agentevent"
	"insights/internal/duckdb"
	"insights/internal/eventtypes"
	"insights/internal/loading"
	"insights/internal/session"
	"insights/internal/spec"
	"insights/internal/transport"
	"insights/internal/ui/live"
)

// relay forwards applied events to a target set after the facade exists.
type relay struct {
	targets []session.Observer
}

func (r *relay) OnEvent(ev agentevent.Event) {
	for _, target := range r.targets {
		target.OnEvent(ev)
	}
}

func (r *relay) add(target session.Observer) {
	if target != nil {
		r.targets = append(r.targets, target)
	}
}

// sessionParts groups what a command needs to drive a session.
type sessionParts struct {
	facade *session.Facade
	relay  *relay
}

// newSession wires a transport session and facade from config. The
// provider may be nil, in which case configured event types are used.
func newSession(cfg spec.Config, sender transport.Sender, provider eventtypes.Provider) (sessionParts, error) {
	if provider == nil {
		provider = eventtypes.Static(cfg.EventTypes)
	}
	tr := transport.NewSession(sender)
	fanout := &relay{}
	facade, err := session.New(tr,
		session.WithGeneratorTool(cfg.Agent.GeneratorTool),
		session.WithEventTypes(provider),
		session.WithResolver(loading.Resolver{Phrases: cfg.Phrases()}),
		session.WithObserver(fanout),
	)
	if err != nil {
		return sessionParts{}, err
	}
	return sessionParts{facade: facade, relay: fanout}, nil
}

// warehouseProvider prefers configured event types over the warehouse.
func warehouseProvider(cfg spec.Config, db *sql.DB) eventtypes.Provider {
	if len(cfg.EventTypes) > 0 {
		return eventtypes.Static(cfg.EventTypes)
	}
	return duckdb.EventTypeProvider(db, cfg.Warehouse.PageSize, cfg.Warehouse.MaxPages)
}

// openWarehouse opens the configured warehouse, honoring an override.
func openWarehouse(ctx context.Context, cfg spec.Config, override string) (*sql.DB, string, error) {
	path := cfg.Warehouse.Path
	if override != "" {
		path = override
	}
	if path != "" && path != duckdb.InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, path, fmt.Errorf("create warehouse dir: %w", err)
		}
	}
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return nil, path, err
	}
	return db, path, nil
}

// presenter is the UI attached to a session run.
type presenter struct {
	live *live.Controller
}

// notice shows a message in the live footer, or prints it to w.
func (p presenter) notice(w io.Writer, message string) {
	if p.live != nil {
		p.live.Notice(message)
		return
	}
	fmt.Fprintln(w, message)
}

func (p presenter) refresh(threadID string) {
	if p.live != nil {
		p.live.Refresh(threadID)
	}
}

// finish ends the live UI and waits for it to exit.
func (p presenter) finish() {
	if p.live == nil {
		return
	}
	p.live.End()
	p.live.Wait()
}

// startPresenter picks the live UI or plain output for a session.
func startPresenter(cfg spec.Config, mode string, verbose bool, endpoint string, parts sessionParts, stdout, stderr io.Writer) (presenter, error) {
	decision, err := resolveUIMode(mode, cfg.UI.Mode, verbose, stdout)
	if err != nil {
		return presenter{}, err
	}
	if decision.warning != "" {
		fmt.Fprintln(stderr, decision.warning)
	}
	if decision.useLive {
		controller := live.Start(stdout, parts.facade, live.Options{
			NoColor:  cfg.UI.NoColor,
			Endpoint: endpoint,
		})
		parts.relay.add(controller)
		return presenter{live: controller}, nil
	}
	plain := newPlainObserver(parts.facade, stdout, verboseLogger{enabled: verbose, writer: stderr, noColor: cfg.UI.NoColor})
	parts.relay.add(plain)
	return presenter{}, nil
}
