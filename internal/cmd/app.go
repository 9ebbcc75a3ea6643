// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/aibor/beriboot/internal/backend"
	"github.com/aibor/beriboot/internal/bringup"
	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/host"
	"github.com/aibor/beriboot/internal/report"
)

// app bundles the per-invocation wiring shared by the subcommands.
type app struct {
	cfg      *config.Config
	stdio    IO
	reporter *report.Reporter
	sink     io.Writer
	cleanup  *cleanupList
}

func newApp(cfg *config.Config, stdio IO) *app {
	setupLogging(stdio.Stderr, cfg.Verbosity)

	reporter := report.New(stdio.Stdout, cfg.Verbosity)

	sink := reporter.StreamSink()
	if cfg.Interact {
		// The user needs to see the console they are about to take over,
		// independent of the verbosity level.
		sink = stdio.Stdout
	}

	return &app{
		cfg:      cfg,
		stdio:    stdio,
		reporter: reporter,
		sink:     sink,
		cleanup:  &cleanupList{},
	}
}

func (a *app) hostRunner() *host.Runner {
	return &host.Runner{Reporter: a.reporter, Sink: a.sink}
}

func (a *app) adapter() backend.Adapter {
	return backend.New(a.cfg, a.reporter, a.sink, slog.Default())
}

// registerTeardown schedules session shutdown and, for hardware targets, the
// stray terminal cleanup that releases the JTAG cable for the next run.
func (a *app) registerTeardown(sess *console.Session, adapter backend.Adapter) {
	a.cleanup.add(func() {
		_ = sess.Close()

		if !adapter.NeedsCableCleanup() {
			return
		}

		killer := &host.TerminalKiller{Runner: a.hostRunner()}

		err := killer.CleanupStrayTerminals(context.Background(), a.cfg.CableID)
		if err != nil {
			a.reporter.Error("cleaning up stray terminals: %v", err)
		}
	})
}

// boot walks the full bring-up pipeline to a logged-in shell.
func (a *app) boot(
	ctx context.Context,
	adapter backend.Adapter,
) (*console.Session, error) {
	seq := bringup.NewSequencer(a.cfg, adapter, a.reporter, slog.Default())

	sess, err := seq.Run(ctx)
	if sess != nil {
		a.registerTeardown(sess, adapter)
	}

	return sess, err
}

// attach connects to an already booted target.
func (a *app) attach(
	ctx context.Context,
	adapter backend.Adapter,
) (*console.Session, error) {
	sess, err := adapter.Console(ctx)
	if err != nil {
		return nil, err
	}

	a.registerTeardown(sess, adapter)

	return sess, nil
}

// interact hands the console over to the user until stdin hits EOF. Output
// already streams through the transcript sink.
func (a *app) interact(sess *console.Session) error {
	a.reporter.Info("Interacting with console")

	// Provoke a prompt so the user is not greeted by a blank screen.
	_ = sess.SendLine("")

	_, err := io.Copy(sess.Stream().Input(), a.stdio.Stdin)

	return err
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}
