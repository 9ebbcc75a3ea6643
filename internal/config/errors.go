// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactMissing is returned if a configured bitstream or kernel
	// image file does not exist.
	ErrArtifactMissing = errors.New("artifact file does not exist")

	// ErrCPUKindInvalid is returned for an unknown CPU kind.
	ErrCPUKindInvalid = errors.New("unknown CPU kind")

	// ErrIncompatibleFlags is returned for flag combinations that cannot
	// work together.
	ErrIncompatibleFlags = errors.New("incompatible flags")
)

// Error indicates an invalid configuration. It is reported before any
// console interaction happens.
type Error struct {
	Field string
	Err   error
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}
