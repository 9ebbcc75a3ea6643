// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package network toggles the target's network interface over the console.
//
// The interface is kept down while benchmarks run so interrupt load does not
// skew results, and brought up only for SSH transfers.
package network
