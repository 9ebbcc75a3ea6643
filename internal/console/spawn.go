// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Spawn starts the command attached to a pseudo terminal and returns a
// [Stream] reading its output.
//
// Terminal echo is disabled so sent lines are not read back as output.
func Spawn(
	ctx context.Context,
	sink io.Writer,
	log *slog.Logger,
	name string,
	args ...string,
) (*Stream, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	if err := disableEcho(tty); err != nil {
		_ = tty.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	return newStream(cmd, tty, tty, tty, sink, log), nil
}

func disableEcho(tty *os.File) error {
	fd := int(tty.Fd())

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}

	termios.Lflag &^= unix.ECHO

	err = unix.IoctlSetTermios(fd, unix.TCSETS, termios)
	if err != nil {
		return fmt.Errorf("set termios: %w", err)
	}

	return nil
}
