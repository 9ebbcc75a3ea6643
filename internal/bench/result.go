// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bench

// ResultKind classifies how a benchmark run ended on the console. Exactly
// one kind is produced per run.
type ResultKind int

const (
	// ResultCompleted means the driver script printed its completion
	// banner.
	ResultCompleted ResultKind = iota
	// ResultCommandNotFound means the shell could not find the driver
	// script at all.
	ResultCommandNotFound
	// ResultScriptFailed means the driver script exited non-zero.
	ResultScriptFailed
	// ResultExplicitFailure means the script printed the configured
	// failure string.
	ResultExplicitFailure
	// ResultKernelPanic means the kernel dropped into the debugger while
	// the benchmark ran.
	ResultKernelPanic
)

// String implements [fmt.Stringer].
func (k ResultKind) String() string {
	switch k {
	case ResultCompleted:
		return "completed"
	case ResultCommandNotFound:
		return "command not found"
	case ResultScriptFailed:
		return "script failed"
	case ResultExplicitFailure:
		return "explicit failure"
	case ResultKernelPanic:
		return "kernel panic"
	default:
		return "unknown"
	}
}

// RunResult is the classified outcome of one benchmark run.
type RunResult struct {
	Kind ResultKind
	// Backtrace holds the debugger backtrace for [ResultKernelPanic].
	Backtrace string
}

// OK returns true if the benchmark completed.
func (r RunResult) OK() bool {
	return r.Kind == ResultCompleted
}
