// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bench copies a benchmark tree to the target, runs its driver
// script over the console and fetches the results back over SSH.
//
// Transfers run with the target's network up; the benchmark itself runs
// with it down so interrupt load does not skew the numbers.
package bench
