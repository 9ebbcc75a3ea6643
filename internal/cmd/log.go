// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"io"
	"log/slog"

	"github.com/aibor/beriboot/internal/report"
)

func setupLogging(writer io.Writer, verbosity int) {
	level := slog.LevelWarn

	switch {
	case verbosity >= report.LevelStream:
		level = slog.LevelDebug
	case verbosity >= report.LevelInfo:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)))
}
