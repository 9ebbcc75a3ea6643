// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package network

import "errors"

// ErrNoSuchInterface is returned when the target reports the configured
// interface does not exist. Distinct from a timeout: retrying cannot help.
var ErrNoSuchInterface = errors.New("no such interface")
