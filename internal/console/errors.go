// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"errors"
	"fmt"
)

var (
	// ErrExpectTimeout is returned if none of the expected patterns was
	// observed within the phase's time budget.
	ErrExpectTimeout = errors.New("timed out waiting for pattern")

	// ErrStreamClosed is returned if the console process terminated while a
	// pattern was still expected.
	ErrStreamClosed = errors.New("console stream closed")

	// ErrExplicitFailure is returned if a recognized failure banner was
	// matched.
	ErrExplicitFailure = errors.New("failure pattern matched")

	// ErrGuestPanic is returned if a kernel panic or debugger entry banner
	// was observed on the console.
	ErrGuestPanic = errors.New("target system panicked")

	// ErrCommandFailed is returned if a remote shell command reported a non
	// zero exit status.
	ErrCommandFailed = errors.New("remote command failed")

	// ErrLineContinuation is returned if the remote shell entered line
	// continuation mode, which the phase runner cannot recover from.
	ErrLineContinuation = errors.New("shell entered line continuation")
)

// PhaseError is the fatal result of a non-successful [Phase].
type PhaseError struct {
	Phase   string
	Outcome Outcome
	Err     error
}

// Error implements the [error] interface.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

// Is implements the [errors.Is] interface.
func (*PhaseError) Is(other error) bool {
	_, ok := other.(*PhaseError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *PhaseError) Unwrap() error {
	return e.Err
}
