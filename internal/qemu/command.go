// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu composes and runs the emulator command that stands in for the
// FPGA board. The guest's serial console is attached to the spawned
// process's terminal, so the same pattern driven bring-up works on both
// backends.
package qemu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// SDKRootEnv is the environment variable the emulator binary location is
// inferred from when no explicit path is given.
const SDKRootEnv = "CHERI_SDK"

const defaultMemoryMB = 2048

// CommandSpec defines the parameters for one emulator invocation.
type CommandSpec struct {
	// Path to the qemu-system binary.
	Executable string

	// Path to the (uncompressed) kernel to boot.
	Kernel string

	// Optional disk image for -hda.
	DiskImage string

	// Host port forwarded to the guest's SSH port.
	SSHPort int

	// Memory for the machine in MB.
	Memory int
}

// arguments compiles the argument list for the emulator.
func (s CommandSpec) arguments() []Argument {
	memory := s.Memory
	if memory == 0 {
		memory = defaultMemoryMB
	}

	userNet := fmt.Sprintf(
		"user,id=net0,ipv6=off,hostfwd=tcp::%d-:22", s.SSHPort)

	args := []Argument{
		ArgMachine("malta"),
		ArgKernel(s.Kernel),
		ArgMemory(memory),
		ArgNographic,
		ArgNet("nic"),
		ArgNet(userNet),
	}

	if s.DiskImage != "" {
		args = append(args, ArgHda(s.DiskImage))
	}

	return args
}

// Start spawns the emulator attached to a pty and returns its console
// stream. The command line is announced before spawning.
func (s CommandSpec) Start(
	ctx context.Context,
	reporter *report.Reporter,
	sink io.Writer,
	log *slog.Logger,
) (*console.Stream, error) {
	args, err := BuildArgumentStrings(s.arguments())
	if err != nil {
		return nil, err
	}

	reporter.HostCmd(s.Executable + " " + strings.Join(args, " "))

	return console.Spawn(ctx, sink, log, s.Executable, args...)
}

// ResolveExecutable returns the emulator binary path, either the explicit
// one or one inferred from the SDK root and the CPU kind.
func ResolveExecutable(explicit, cpuKind string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, explicit)
		}

		return explicit, nil
	}

	sdkRoot := os.Getenv(SDKRootEnv)
	if sdkRoot == "" {
		return "", fmt.Errorf(
			"%w: $%s not set and no explicit path given",
			ErrExecutableNotFound, SDKRootEnv)
	}

	return resolveFromSDK(sdkRoot, cpuKind)
}

func resolveFromSDK(sdkRoot, cpuKind string) (string, error) {
	// The SDK root may point at the SDK itself or directly at its bindir.
	bindir := sdkRoot
	if _, err := os.Stat(filepath.Join(bindir, "clang")); err != nil {
		bindir = filepath.Join(sdkRoot, "bin")
	}

	if _, err := os.Stat(filepath.Join(bindir, "clang")); err != nil {
		return "", fmt.Errorf(
			"%w: neither $%s/clang nor $%s/bin/clang exist",
			ErrExecutableNotFound, SDKRootEnv, SDKRootEnv)
	}

	suffix, err := config.QemuBinarySuffix(cpuKind)
	if err != nil {
		return "", err
	}

	path := filepath.Join(bindir, "qemu-system-"+suffix)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: inferred %s", ErrExecutableNotFound, path)
	}

	return path, nil
}
