// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/report"
)

func newLoadBitfileCommand(cfg *config.Config, stdio IO) *cobra.Command {
	return &cobra.Command{
		Use:   "load-bitfile",
		Short: "Load the bitfile onto the FPGA and stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateBitfile(); err != nil {
				return err
			}

			// Programming the FPGA is exactly the situation where one
			// wants to see everything.
			cfg.Verbosity = report.LevelStream

			app := newApp(cfg, stdio)
			defer app.cleanup.run()

			return app.adapter().LoadBitstream(cmd.Context())
		},
	}
}
