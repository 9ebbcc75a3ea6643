// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aibor/beriboot/internal/config"
)

func newBootonlyCommand(cfg *config.Config, stdio IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootonly",
		Short: "Boot the kernel image and optionally hand over the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateBoot(); err != nil {
				return err
			}

			if cfg.Interact && !stdinIsTerminal(stdio.Stdin) {
				return ErrNoTerminal
			}

			app := newApp(cfg, stdio)
			defer app.cleanup.run()

			sess, err := app.boot(cmd.Context(), app.adapter())
			if err != nil {
				return err
			}

			if cfg.Interact {
				return app.interact(sess)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&cfg.Interact, "interact", "i", false,
		"hand the console over after boot")
	cmd.Flags().BoolVar(&cfg.SkipBitfile, "skip-bitfile", false,
		"assume the bitfile is already loaded")

	return cmd
}
