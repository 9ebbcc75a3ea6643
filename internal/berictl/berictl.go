// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package berictl wraps the vendor control utility that programs the FPGA
// and attaches to its UART over a numbered JTAG cable.
//
// Each operation spawns one berictl invocation, waits for the subcommand's
// success banner and then for the process to exit. The utility decompresses
// .bz2 artifacts itself when passed -z.
package berictl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// Success banners of the berictl subcommands.
var (
	bitstreamLoaded = console.Literal("Programmer was successful. 0 errors")
	kernelLoaded    = console.Regex(`100% of .*`)
	traceMaskSet    = console.Literal("Trace Mask")
	tracePaused     = console.Literal("Leaving processor paused")
	uartAttached    = console.Literal("Connecting to BERI UART")
)

const processExitTimeout = 30 * time.Second

// Controller drives one berictl binary against one cable.
type Controller struct {
	Berictl  string
	CableID  string
	Reporter *report.Reporter
	Log      *slog.Logger

	// trace overrides the timeout diagnostic. Nil means [Streamtrace].
	trace func(context.Context)
}

// spawn starts a berictl subcommand attached to a pty.
func (c *Controller) spawn(
	ctx context.Context,
	sink io.Writer,
	subcmd string,
	extra ...string,
) (*console.Stream, error) {
	args := append([]string{"-c", c.CableID, "-j", subcmd}, extra...)

	c.Reporter.HostCmd(c.Berictl + " " + strings.Join(args, " "))

	return console.Spawn(ctx, sink, c.Log, c.Berictl, args...)
}

// runUntil spawns a subcommand, waits for the success pattern and then for
// the process to exit.
func (c *Controller) runUntil(
	ctx context.Context,
	label string,
	success console.Pattern,
	timeout time.Duration,
	subcmd string,
	extra ...string,
) error {
	stream, err := c.spawn(ctx, c.Reporter.StreamSink(), subcmd, extra...)
	if err != nil {
		return err
	}
	defer stream.Close()

	_, err = stream.Expect(ctx, []console.Pattern{success}, timeout)
	if err != nil {
		// A stuck trace dump must not request another one.
		if errors.Is(err, console.ErrExpectTimeout) && subcmd != "streamtrace" {
			c.dumpTrace(ctx)
		}

		return &console.PhaseError{
			Phase:   label,
			Outcome: outcomeFor(err),
			Err:     err,
		}
	}

	return stream.WaitClosed(ctx, processExitTimeout)
}

// dumpTrace requests a trace buffer dump after a timeout. Its own outcome
// never masks the timeout.
func (c *Controller) dumpTrace(ctx context.Context) {
	if c.trace != nil {
		c.trace(ctx)

		return
	}

	if err := c.Streamtrace(ctx); err != nil {
		c.Log.Warn("Trace dump failed", slog.Any("error", err))
	}
}

// runToExit spawns a subcommand and waits only for it to exit.
func (c *Controller) runToExit(
	ctx context.Context,
	timeout time.Duration,
	subcmd string,
) error {
	stream, err := c.spawn(ctx, c.Reporter.StreamSink(), subcmd)
	if err != nil {
		return err
	}
	defer stream.Close()

	return stream.WaitClosed(ctx, timeout)
}

// LoadBitstream feeds the bitstream to the FPGA.
func (c *Controller) LoadBitstream(
	ctx context.Context,
	bitfile string,
	timeout time.Duration,
) error {
	extra := compressedFlag(bitfile)
	extra = append(extra, bitfile)

	return c.runUntil(
		ctx, "loading bitfile", bitstreamLoaded, timeout, "loadsof", extra...)
}

// LoadKernel feeds the kernel image to the board memory at the load address.
func (c *Controller) LoadKernel(
	ctx context.Context,
	img string,
	addr uint64,
	timeout time.Duration,
) error {
	extra := compressedFlag(img)
	extra = append(extra, img, fmt.Sprintf("%#x", addr))

	return c.runUntil(
		ctx, "loading kernel image", kernelLoaded, timeout, "loadbin", extra...)
}

// ConfigureTracing enables the hardware trace filter.
func (c *Controller) ConfigureTracing(ctx context.Context) error {
	return c.runUntil(
		ctx, "configuring tracing", traceMaskSet, processExitTimeout,
		"settracefilter")
}

// Streamtrace requests a trace buffer dump. It is the diagnostic of last
// resort when the core appears stuck.
func (c *Controller) Streamtrace(ctx context.Context) error {
	return c.runUntil(
		ctx, "streamtrace", tracePaused, processExitTimeout, "streamtrace")
}

// Boot unpauses the core and triggers the boot loader. Control returns once
// both loader invocations have exited; boot output appears on the UART
// console.
func (c *Controller) Boot(ctx context.Context) error {
	err := c.runToExit(ctx, processExitTimeout, "resume")
	if err != nil {
		return err
	}

	return c.runToExit(ctx, processExitTimeout, "boot")
}

// Console attaches to the live UART and returns the stream once the
// connection banner was seen.
func (c *Controller) Console(
	ctx context.Context,
	sink io.Writer,
	timeout time.Duration,
) (*console.Stream, error) {
	stream, err := c.spawn(ctx, sink, "console")
	if err != nil {
		return nil, err
	}

	_, err = stream.Expect(ctx, []console.Pattern{uartAttached}, timeout)
	if err != nil {
		_ = stream.Close()

		return nil, &console.PhaseError{
			Phase:   "attaching to UART",
			Outcome: outcomeFor(err),
			Err:     fmt.Errorf("timeout waiting for UART to attach: %w", err),
		}
	}

	return stream, nil
}

func compressedFlag(path string) []string {
	if strings.HasSuffix(path, ".bz2") {
		return []string{"-z"}
	}

	return nil
}

func outcomeFor(err error) console.Outcome {
	if err == console.ErrExpectTimeout { //nolint:errorlint
		return console.OutcomeTimeout
	}

	return console.OutcomeStreamClosed
}
