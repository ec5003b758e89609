package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/go-drift/flow/internal/config"
	"github.com/go-drift/flow/internal/logging"
	"github.com/go-drift/flow/internal/termview"
	"github.com/go-drift/flow/internal/todo"
	"github.com/go-drift/flow/pkg/engine"
	"github.com/go-drift/flow/pkg/errors"
)

// session is one script run: the resolved project settings, the decoded
// events and the options of the engine they are played through.
type session struct {
	cfg     *config.Resolved
	events  []engine.Event
	backend *termview.Backend
	opts    []engine.Option
}

func newSession(cmd *cobra.Command, scriptPath string, backendOpts ...termview.Option) (*session, error) {
	dir, _ := cmd.Flags().GetString("dir")
	levelFlag, _ := cmd.Flags().GetString("log-level")

	level, err := logging.ParseLevel(levelFlag)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level)
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: level <= slog.LevelDebug})

	if dir == "" {
		dir = projectDir()
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	events, err := todo.LoadScript(f)
	if err != nil {
		return nil, err
	}

	backend := termview.New(backendOpts...)
	opts := append(cfg.EngineOptions(),
		engine.WithLogger(logger),
		engine.WithHooks(backend.Hooks()),
	)
	logger.Debug("session ready", "app", cfg.AppName, "script", scriptPath, "events", len(events))
	return &session{cfg: cfg, events: events, backend: backend, opts: opts}, nil
}

// newEngine creates the engine for an empty todo list with the session
// options followed by opts.
func (s *session) newEngine(opts ...engine.Option) *engine.Engine[todo.App] {
	return engine.New(todo.App{}, todo.View, s.backend.Mount, append(s.opts, opts...)...)
}

// play renders the initial state and steps every event of the script in
// order.
func (s *session) play(ctx context.Context, eng *engine.Engine[todo.App]) error {
	ch := make(chan engine.Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return eng.Run(ctx, ch)
}

// projectDir is the enclosing Go module root, or the working directory
// outside a module.
func projectDir() string {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		return "."
	}
	return root
}

func header(w io.Writer, cfg *config.Resolved, events int) {
	fmt.Fprintf(w, "%s: %d events\n", cfg.AppName, events)
}
