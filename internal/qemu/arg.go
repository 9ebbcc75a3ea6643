// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"slices"
	"strconv"
)

// Argument is a QEMU command line argument with or without value. Its name
// might be marked unique in an argument list.
type Argument struct {
	name          string
	value         string
	nonUniqueName bool
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	s := "-" + a.name
	if a.value != "" {
		s += " " + a.value
	}

	return s
}

// Equal compares the [Argument]s.
//
// If the name is marked unique, only names are compared. Otherwise name and
// value are compared.
func (a Argument) Equal(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.nonUniqueName {
		return a.value == other.value
	}

	return true
}

// WithValue returns a constructor that derives an [Argument] with the
// receiver's name and the given value.
func (a Argument) WithValue() func(string) Argument {
	return func(s string) Argument {
		a := a
		a.value = s

		return a
	}
}

// WithIntValue is like [Argument.WithValue] for integer values.
func (a Argument) WithIntValue() func(int) Argument {
	return func(i int) Argument {
		return a.WithValue()(strconv.Itoa(i))
	}
}

// UniqueArg returns a new [Argument] that may appear only once in an
// argument list.
func UniqueArg(name string) Argument {
	return Argument{
		name: name,
	}
}

// RepeatableArg returns a new [Argument] that may appear multiple times.
func RepeatableArg(name string) Argument {
	return Argument{
		name:          name,
		nonUniqueName: true,
	}
}

// Arguments of the emulator invocation for the softcore targets.
var (
	// Machine type. The BERI kernels are built for the malta board.
	ArgMachine = UniqueArg("M").WithValue()
	// Path to the kernel file.
	ArgKernel = UniqueArg("kernel").WithValue()
	// Memory for the machine, in MB.
	ArgMemory = UniqueArg("m").WithIntValue()
	// Disk image used as primary hard drive.
	ArgHda = UniqueArg("hda").WithValue()
	// Network configuration, given twice (nic and user backend).
	ArgNet = RepeatableArg("net").WithValue()
	// Disable graphical output, console on stdio.
	ArgNographic = UniqueArg("nographic")
)

// BuildArgumentStrings compiles the [Argument]s into a slice of strings for
// [exec.Command].
//
// It returns an error if any uniqueness constraint is violated.
func BuildArgumentStrings(args []Argument) ([]string, error) {
	argStrings := make([]string, 0, len(args)*2)

	for idx, arg := range args {
		if i := slices.IndexFunc(args[:idx], arg.Equal); i != -1 {
			return nil, fmt.Errorf(
				"%w: %s, %s",
				ErrArgumentCollision,
				arg.String(),
				args[i].String(),
			)
		}

		argStrings = append(argStrings, "-"+arg.name)

		if arg.value != "" {
			argStrings = append(argStrings, arg.value)
		}
	}

	return argStrings, nil
}
