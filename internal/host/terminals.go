// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// The hardware console is attached through a nios2-terminal instance bound
// to the JTAG cable. A crashed or interrupted run leaves it behind and it
// then blocks the cable for every following run.

// TerminalKiller finds and terminates stray terminal processes for one
// cable. The process table source and the kill primitive are replaceable for
// tests.
type TerminalKiller struct {
	Runner *Runner

	// Kill overrides the signal delivery. Defaults to SIGKILL via unix.Kill.
	Kill func(pid int) error
}

// CleanupStrayTerminals terminates any terminal emulator process attached to
// the cable. Finding no process is a non-error outcome.
func (k *TerminalKiller) CleanupStrayTerminals(ctx context.Context, cableID string) error {
	out, err := k.Runner.Output(ctx, "ps", "-axww", "-o", "pid=,command=")
	if err != nil {
		return err
	}

	pids := matchTerminalPids(string(out), cableID)
	if len(pids) == 0 {
		k.Runner.Reporter.Info("no nios2-terminal instance found ===> nothing to kill")
		return nil
	}

	kill := k.Kill
	if kill == nil {
		kill = func(pid int) error {
			return unix.Kill(pid, unix.SIGKILL)
		}
	}

	for _, pid := range pids {
		err := kill(pid)
		if err != nil && err != unix.ESRCH { //nolint:errorlint
			return err
		}
	}

	return nil
}

// matchTerminalPids extracts the pids of nios2-terminal processes bound to
// the cable from "ps -o pid=,command=" output.
func matchTerminalPids(psOutput, cableID string) []int {
	re := regexp.MustCompile(`nios2-terminal.*` + regexp.QuoteMeta(cableID))

	var pids []int

	for _, line := range strings.Split(psOutput, "\n") {
		if !re.MatchString(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		pids = append(pids, pid)
	}

	return pids
}
