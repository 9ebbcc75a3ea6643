// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console provides line-oriented interaction with an interactive
// child process, like a serial console attached via a terminal program or a
// QEMU instance on stdio.
//
// [Stream] is the low level half: it spawns (or adopts) a process, buffers
// its decoded output and offers blocking pattern matching with a hard
// deadline. [Session] is the high level half: it runs named [Phase]s against
// a stream and classifies their outcome, and it knows how to execute shell
// commands on the target and resynchronize on the prompt.
//
// All output read from the stream is teed to a transcript sink for
// post-mortem diagnosis.
package console
