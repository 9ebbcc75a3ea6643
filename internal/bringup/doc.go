// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bringup drives the ordered boot pipeline of a target: bitstream
// load, kernel load, trace setup, boot, console login, shell normalization
// and on-target provisioning.
//
// All target I/O goes through a [console.Session]; the hardware specific
// operations are delegated to a [backend.Adapter], so the sequence itself is
// backend-agnostic.
package bringup
