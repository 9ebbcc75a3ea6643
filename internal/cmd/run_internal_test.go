// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

func testIO(stderr io.Writer) IO {
	if stderr == nil {
		stderr = io.Discard
	}

	return IO{
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: stderr,
	}
}

func TestRootCommandFlagParsing(t *testing.T) {
	cfg := config.New()

	root := NewRootCommand(cfg, testIO(nil))
	root.SetArgs([]string{
		"--kernel-addr", "0x2000000",
		"--use-qemu-instead-of-fpga",
		"-vv",
		"console",
	})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	// The console subcommand bails out early without a terminal, after
	// the flags were parsed.
	err := root.Execute()
	require.ErrorIs(t, err, ErrNoTerminal)

	assert.Equal(t, uint64(0x2000000), cfg.KernelAddr)
	assert.True(t, cfg.UseQemu)
	assert.Equal(t, 2, cfg.Verbosity)
}

func TestRootCommandVerbosityDefault(t *testing.T) {
	cfg := config.New()
	cfg.Verbosity = 3

	root := NewRootCommand(cfg, testIO(nil))
	root.SetArgs([]string{"console"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	require.ErrorIs(t, err, ErrNoTerminal)

	assert.Equal(t, 3, cfg.Verbosity)
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "missing benchdir",
			args:   []string{"runbench", "/nonexistent/benchdir"},
			errMsg: "benchdir",
		},
		{
			name: "skip-boot with qemu",
			args: []string{
				"runbench", ".",
				"--skip-boot", "--use-qemu-instead-of-fpga",
			},
			errMsg: "skip-boot",
		},
		{
			name:   "missing kernel image",
			args:   []string{"bootonly", "--skip-bitfile"},
			errMsg: "kernel-img",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			rc := Run(tt.args, testIO(&stderr))

			assert.Equal(t, 1, rc)
			assert.Contains(t, stderr.String(), tt.errMsg)
		})
	}
}

func TestReportRunError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect []string
	}{
		{
			name: "phase error",
			err: fmt.Errorf("run failed: %w", &console.PhaseError{
				Phase:   "booting kernel",
				Outcome: console.OutcomeTimeout,
				Err:     console.ErrExpectTimeout,
			}),
			expect: []string{"Phase ", "booting kernel", " - TIMEOUT"},
		},
		{
			name:   "plain error",
			err:    config.ErrArtifactMissing,
			expect: []string{"Error: artifact file does not exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			reportRunError(report.New(&buf, 0), tt.err)

			for _, want := range tt.expect {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
