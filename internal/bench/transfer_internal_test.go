// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aibor/beriboot/internal/config"
)

func TestScpArgs(t *testing.T) {
	t.Run("default port", func(t *testing.T) {
		args := scpArgs("/home/u/.ssh/id_rsa", 22,
			"mibench", "ctsrd@de4:/tmp/benchdir")

		assert.Equal(t, []string{
			"-o", "StrictHostKeyChecking=no",
			"-o", "UserKnownHostsFile=/dev/null",
			"-o", "BatchMode=yes",
			"-i", "/home/u/.ssh/id_rsa",
			"-r",
			"mibench", "ctsrd@de4:/tmp/benchdir",
		}, args)
	})

	t.Run("forwarded port", func(t *testing.T) {
		args := scpArgs("/home/u/.ssh/id_rsa", 12345,
			"mibench", "ctsrd@localhost:/tmp/benchdir")

		assert.Equal(t, []string{"-P", "12345"}, args[:2])
	})
}

func TestRunnerTargetDir(t *testing.T) {
	cfg := config.New()
	cfg.BenchDir = "/home/u/benchmarks/mibench"

	r := &Runner{Config: cfg}

	assert.Equal(t, "/tmp/benchdir/mibench", r.TargetDir())
}
