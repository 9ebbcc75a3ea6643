// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/beriboot/internal/qemu"
)

func TestBuildArgumentStrings(t *testing.T) {
	t.Run("builds", func(t *testing.T) {
		args := []qemu.Argument{
			qemu.ArgMachine("malta"),
			qemu.ArgKernel("bsd"),
			qemu.ArgNographic,
			qemu.ArgNet("nic"),
			qemu.ArgNet("user,id=net0"),
		}
		expected := []string{
			"-M", "malta",
			"-kernel", "bsd",
			"-nographic",
			"-net", "nic",
			"-net", "user,id=net0",
		}

		built, err := qemu.BuildArgumentStrings(args)
		require.NoError(t, err)
		assert.Equal(t, expected, built)
	})

	t.Run("unique collision", func(t *testing.T) {
		args := []qemu.Argument{
			qemu.ArgKernel("bsd"),
			qemu.ArgKernel("other"),
		}

		_, err := qemu.BuildArgumentStrings(args)
		require.ErrorIs(t, err, qemu.ErrArgumentCollision)
	})

	t.Run("repeatable value collision", func(t *testing.T) {
		args := []qemu.Argument{
			qemu.ArgNet("nic"),
			qemu.ArgNet("nic"),
		}

		_, err := qemu.BuildArgumentStrings(args)
		require.ErrorIs(t, err, qemu.ErrArgumentCollision)
	})
}

func TestResolveExecutableExplicitMissing(t *testing.T) {
	_, err := qemu.ResolveExecutable("/does/not/exist", "mips")
	require.ErrorIs(t, err, qemu.ErrExecutableNotFound)
}
