// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// IO provides input and output streams for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run is the main entry point for the CLI and returns the process exit
// code.
//
// An interrupt cancels the command context; the running phase then fails,
// the command unwinds and the registered teardown runs exactly once.
func Run(args []string, stdio IO) int {
	cfg := config.New()

	if err := cfg.LoadDefaults(config.DefaultsFile); err != nil {
		reportRunError(report.New(stdio.Stderr, cfg.Verbosity), err)

		return 1
	}

	root := NewRootCommand(cfg, stdio)
	root.SetArgs(args)
	root.SetIn(stdio.Stdin)
	root.SetOut(stdio.Stdout)
	root.SetErr(stdio.Stderr)

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		reportRunError(report.New(stdio.Stderr, cfg.Verbosity), err)

		return 1
	}

	return 0
}

// reportRunError prints the fatal error of a run. Failed phases keep the
// phase-labeled format of the pipeline output.
func reportRunError(rep *report.Reporter, err error) {
	var phaseErr *console.PhaseError
	if errors.As(err, &phaseErr) {
		rep.PhaseFailure(phaseErr.Phase,
			strings.ToUpper(phaseErr.Outcome.String()))

		return
	}

	rep.Error("Error: %v", err)
}
