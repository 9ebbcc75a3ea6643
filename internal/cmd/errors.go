// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import "errors"

var (
	// ErrNoTerminal is returned when an interactive command runs without a
	// terminal on stdin. Checked up front, before any hardware is touched.
	ErrNoTerminal = errors.New(
		"interactive mode requires stdin to be a terminal")

	// ErrBenchmarkFailed is returned when the benchmark run did not
	// complete.
	ErrBenchmarkFailed = errors.New("benchmark failed")
)
