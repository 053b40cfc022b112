package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mohamed352/edu-sync-core/internal/engine"
	"github.com/mohamed352/edu-sync-core/internal/gateway"
	"github.com/mohamed352/edu-sync-core/internal/repository"
	"github.com/mohamed352/edu-sync-core/internal/store"
)

// app bundles the collaborators a command needs. The mock gateway is
// rebuilt fresh on every invocation — this CLI is a demo harness over a
// persistent local store, not a persistent remote; a `sync` run uploads
// whatever the store's journal holds into an empty in-memory remote and
// downloads nothing that a prior process didn't seed in the same run.
type app struct {
	store *store.Store
	repo  *repository.Repository
	gw    *gateway.MockGateway
	eng   *engine.Engine
	out   *OutputFormatter
}

func openApp(opts *RootOptions) (*app, error) {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	s, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	repo := repository.New(s)
	gw := gateway.NewMock()
	eng := engine.New(repo, gw)

	return &app{
		store: s,
		repo:  repo,
		gw:    gw,
		eng:   eng,
		out:   &OutputFormatter{Format: opts.Format, Writer: os.Stdout},
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func parseIncrement(arg string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(arg, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid increment %q: %w", arg, err)
	}
	return n, nil
}
