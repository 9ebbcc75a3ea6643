// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"io"
	"log/slog"

	"github.com/aibor/beriboot/internal/berictl"
	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// FPGA drives a physical board through the control utility.
type FPGA struct {
	Config   *config.Config
	Reporter *report.Reporter
	Sink     io.Writer
	Log      *slog.Logger
}

func (f *FPGA) controller() *berictl.Controller {
	return &berictl.Controller{
		Berictl:  f.Config.Berictl,
		CableID:  f.Config.CableID,
		Reporter: f.Reporter,
		Log:      f.Log,
	}
}

// LoadBitstream implements [Adapter].
func (f *FPGA) LoadBitstream(ctx context.Context) error {
	return f.controller().LoadBitstream(
		ctx, f.Config.Bitfile, f.Config.Timeouts.Bitstream)
}

// LoadKernel implements [Adapter].
func (f *FPGA) LoadKernel(ctx context.Context) error {
	return f.controller().LoadKernel(
		ctx, f.Config.KernelImg, f.Config.KernelAddr, f.Config.Timeouts.Kernel)
}

// ConfigureTracing implements [Adapter].
func (f *FPGA) ConfigureTracing(ctx context.Context) error {
	return f.controller().ConfigureTracing(ctx)
}

// Boot implements [Adapter]. The console is grabbed before triggering the
// boot so no early output is missed.
func (f *FPGA) Boot(ctx context.Context) (*console.Session, error) {
	session, err := f.Console(ctx)
	if err != nil {
		return nil, err
	}

	err = f.controller().Boot(ctx)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	return session, nil
}

// Console implements [Adapter].
func (f *FPGA) Console(ctx context.Context) (*console.Session, error) {
	stream, err := f.controller().Console(
		ctx, f.Sink, f.Config.Timeouts.ConsoleAttach)
	if err != nil {
		return nil, err
	}

	return console.NewSession(stream, f.Log), nil
}

// Streamtrace implements [Adapter].
func (f *FPGA) Streamtrace(ctx context.Context) error {
	return f.controller().Streamtrace(ctx)
}

// NeedsCableCleanup implements [Adapter].
func (f *FPGA) NeedsCableCleanup() bool {
	return true
}
