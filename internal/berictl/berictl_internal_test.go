// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package berictl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stuckBerictl builds a fake berictl that never prints a success banner.
func stuckBerictl(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "berictl")
	script := "#!/bin/sh\nexec sleep 10\n"

	err := os.WriteFile(path, []byte(script), 0o755)
	require.NoError(t, err)

	return path
}

func TestControllerLoadTimeoutDumpsTrace(t *testing.T) {
	var traced int

	ctl := &Controller{
		Berictl:  stuckBerictl(t),
		CableID:  "6",
		Reporter: report.New(io.Discard, 0),
		Log:      slog.New(slog.DiscardHandler),
		trace:    func(context.Context) { traced++ },
	}

	err := ctl.LoadBitstream(t.Context(), "design.sof", 300*time.Millisecond)
	require.ErrorIs(t, err, console.ErrExpectTimeout)

	var phaseErr *console.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, console.OutcomeTimeout, phaseErr.Outcome)
	assert.Equal(t, "loading bitfile", phaseErr.Phase)

	assert.Equal(t, 1, traced)
}
