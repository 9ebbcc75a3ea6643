// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Verbosity levels. Messages of a kind are printed only if the reporter's
// verbosity is at least the kind's level.
const (
	LevelError   = 0
	LevelInfo    = 1
	LevelPhase   = 1
	LevelHostCmd = 2
	LevelStream  = 3
)

var (
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgMagenta)
	phaseColor   = color.New(color.FgYellow)
	hostCmdColor = color.New(color.FgBlue)
)

// Reporter prints colorized, level-filtered progress messages for a single
// run. It replaces process wide verbosity state; construct one and pass it to
// each component.
type Reporter struct {
	out       io.Writer
	verbosity int
}

// New creates a [Reporter] writing to out with the given verbosity.
func New(out io.Writer, verbosity int) *Reporter {
	return &Reporter{
		out:       out,
		verbosity: verbosity,
	}
}

// Error prints an error message. Always shown.
func (r *Reporter) Error(format string, args ...any) {
	r.printLeveled(LevelError, errorColor, format, args...)
}

// Info prints an informational message.
func (r *Reporter) Info(format string, args ...any) {
	r.printLeveled(LevelInfo, infoColor, format, args...)
}

// Phase announces the start of a named pipeline phase.
func (r *Reporter) Phase(name string) {
	r.printLeveled(LevelPhase, phaseColor, "%s", name)
}

// PhaseFailure prints a phase-labeled failure message.
func (r *Reporter) PhaseFailure(phase, reason string) {
	if r.verbosity < LevelError {
		return
	}

	_, _ = errorColor.Fprint(r.out, "Phase ")
	_, _ = phaseColor.Fprint(r.out, phase)
	_, _ = errorColor.Fprintln(r.out, " - "+reason)
}

// HostCmd prints the literal command line of a host command about to run.
func (r *Reporter) HostCmd(cmdline string) {
	r.printLeveled(LevelHostCmd, hostCmdColor, "%s", cmdline)
}

// StreamSink returns the writer console transcripts should be teed to. It
// discards unless the verbosity level includes raw stream output.
func (r *Reporter) StreamSink() io.Writer {
	if r.verbosity >= LevelStream {
		return r.out
	}

	return io.Discard
}

func (r *Reporter) printLeveled(
	level int,
	c *color.Color,
	format string,
	args ...any,
) {
	if r.verbosity < level {
		return
	}

	_, _ = c.Fprintln(r.out, fmt.Sprintf(format, args...))
}
