// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"io"
	"log/slog"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/host"
	"github.com/aibor/beriboot/internal/qemu"
	"github.com/aibor/beriboot/internal/report"
)

// Qemu emulates the board with a local process. Bitstream, kernel load and
// tracing operations are no-ops; everything happens in Boot.
type Qemu struct {
	Config   *config.Config
	Reporter *report.Reporter
	Sink     io.Writer
	Log      *slog.Logger
}

// LoadBitstream implements [Adapter].
func (q *Qemu) LoadBitstream(context.Context) error { return nil }

// LoadKernel implements [Adapter].
func (q *Qemu) LoadKernel(context.Context) error { return nil }

// ConfigureTracing implements [Adapter].
func (q *Qemu) ConfigureTracing(context.Context) error { return nil }

// Streamtrace implements [Adapter].
func (q *Qemu) Streamtrace(context.Context) error { return nil }

// Boot implements [Adapter]. Compressed images are unpacked first since the
// emulator cannot read them.
func (q *Qemu) Boot(ctx context.Context) (*console.Session, error) {
	runner := &host.Runner{Reporter: q.Reporter, Sink: q.Sink}

	kernel, err := runner.Decompress(ctx, q.Config.KernelImg)
	if err != nil {
		return nil, err
	}

	diskImage := q.Config.QemuDiskImage
	if diskImage != "" {
		diskImage, err = runner.Decompress(ctx, diskImage)
		if err != nil {
			return nil, err
		}
	}

	executable, err := qemu.ResolveExecutable(q.Config.QemuPath, q.Config.CPUKind)
	if err != nil {
		return nil, err
	}

	spec := qemu.CommandSpec{
		Executable: executable,
		Kernel:     kernel,
		DiskImage:  diskImage,
		SSHPort:    q.Config.QemuSSHPort,
	}

	stream, err := spec.Start(ctx, q.Reporter, q.Sink, q.Log)
	if err != nil {
		return nil, err
	}

	return console.NewSession(stream, q.Log), nil
}

// Console implements [Adapter]. There is no pre-existing emulator console to
// attach to.
func (q *Qemu) Console(context.Context) (*console.Session, error) {
	return nil, ErrNotSupported
}

// NeedsCableCleanup implements [Adapter].
func (q *Qemu) NeedsCableCleanup() bool {
	return false
}
