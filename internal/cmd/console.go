// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aibor/beriboot/internal/config"
)

func newConsoleCommand(cfg *config.Config, stdio IO) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Attach to the board console without loading anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdinIsTerminal(stdio.Stdin) {
				return ErrNoTerminal
			}

			cfg.Interact = true

			app := newApp(cfg, stdio)
			defer app.cleanup.run()

			sess, err := app.attach(cmd.Context(), app.adapter())
			if err != nil {
				return err
			}

			return app.interact(sess)
		},
	}
}
