// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend hides the mechanics of producing a live console from the
// rest of the pipeline. The FPGA variant drives the hardware control
// utility, the QEMU variant spawns a local emulator; both expose the same
// operations so callers never branch on the backend kind.
package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// ErrNotSupported is returned for operations a backend cannot perform, like
// attaching to a pre-existing console of an emulator that was never started.
var ErrNotSupported = errors.New("operation not supported by backend")

// Adapter produces and controls a console session for one target kind.
type Adapter interface {
	// LoadBitstream programs the FPGA. No-op under emulation.
	LoadBitstream(ctx context.Context) error
	// LoadKernel feeds the boot image. No-op under emulation.
	LoadKernel(ctx context.Context) error
	// ConfigureTracing enables hardware tracing. No-op under emulation.
	ConfigureTracing(ctx context.Context) error
	// Boot starts execution and returns the live console session.
	Boot(ctx context.Context) (*console.Session, error)
	// Console attaches to an already booted target.
	Console(ctx context.Context) (*console.Session, error)
	// Streamtrace requests a diagnostic trace dump. No-op under emulation.
	Streamtrace(ctx context.Context) error
	// NeedsCableCleanup reports whether stray terminal processes bound to
	// the cable must be cleaned up after the run.
	NeedsCableCleanup() bool
}

// New selects the [Adapter] for the configured backend.
func New(
	cfg *config.Config,
	reporter *report.Reporter,
	sink io.Writer,
	log *slog.Logger,
) Adapter {
	if cfg.UseQemu {
		return &Qemu{
			Config:   cfg,
			Reporter: reporter,
			Sink:     sink,
			Log:      log,
		}
	}

	return &FPGA{
		Config:   cfg,
		Reporter: reporter,
		Sink:     sink,
		Log:      log,
	}
}
