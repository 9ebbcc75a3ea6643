// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered
	// equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrExecutableNotFound is returned if no emulator binary could be
	// resolved from the explicit path or the SDK root.
	ErrExecutableNotFound = errors.New("emulator binary not found")
)
