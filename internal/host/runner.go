// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package host runs commands on the controlling machine: secure copies,
// artifact decompression and process table scans. Every command line is
// announced literally before it runs.
package host

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/aibor/beriboot/internal/report"
)

// Runner executes host commands, streaming their output to the transcript
// sink.
type Runner struct {
	Reporter *report.Reporter
	Sink     io.Writer
}

// Run executes the command and waits for it to finish.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	r.Reporter.HostCmd(strings.Join(append([]string{name}, args...), " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Sink
	cmd.Stderr = r.Sink

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// Output executes the command and returns its stdout.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.Reporter.HostCmd(strings.Join(append([]string{name}, args...), " "))

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return out, nil
}
