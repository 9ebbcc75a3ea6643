// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/qemu"
)

// NewRootCommand builds the CLI with all subcommands attached.
//
// Flag defaults come from cfg, which has the optional defaults file merged
// in already; parsed flag values override it in place.
func NewRootCommand(cfg *config.Config, stdio IO) *cobra.Command {
	root := &cobra.Command{
		Use:          "beriboot",
		Short:        "Boot CheriBSD on a BERI FPGA or in QEMU and run benchmarks",
		SilenceUsage: true,
		// Errors are printed in Run so phase failures keep their
		// colorized, phase-labeled format.
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.Berictl, "berictl", "b", cfg.Berictl,
		"path of the berictl binary")
	pf.StringVarP(&cfg.CableID, "cable-id", "c", cfg.CableID,
		"JTAG cable of the board")
	pf.StringVar(&cfg.Bitfile, "bitfile", cfg.Bitfile,
		"bitstream to program")
	pf.StringVar(&cfg.KernelImg, "kernel-img", cfg.KernelImg,
		"kernel image to load")
	pf.Uint64Var(&cfg.KernelAddr, "kernel-addr", cfg.KernelAddr,
		"load address of the kernel image")
	pf.BoolVar(&cfg.UseQemu, "use-qemu-instead-of-fpga", cfg.UseQemu,
		"emulate the board in QEMU")
	pf.StringVar(&cfg.QemuPath, "qemu-path", cfg.QemuPath,
		"QEMU binary, inferred from $"+qemu.SDKRootEnv+" if empty")
	pf.StringVar(&cfg.QemuDiskImage, "qemu-disk-image", cfg.QemuDiskImage,
		"disk image for the emulated board")
	pf.IntVar(&cfg.QemuSSHPort, "qemu-ssh-port", cfg.QemuSSHPort,
		"host port forwarded to the emulated SSH port")
	pf.StringVar(&cfg.CPUKind, "cpu-kind", cfg.CPUKind,
		"CPU kind of the softcore (mips, cheri128, cheri256)")
	pf.StringVar(&cfg.NetworkInterface, "network-interface",
		cfg.NetworkInterface,
		"board network interface, backend default if empty")
	pf.StringVarP(&cfg.SSHKey, "ssh-key", "k", cfg.SSHKey,
		"private key for target access")
	pf.CountVarP(&cfg.Verbosity, "verbose", "v",
		"more progress output; repeatable")

	// The count flag resets its target on registration, so the defaults
	// file value has to be put back unless -v was actually given.
	defaultVerbosity := cfg.Verbosity
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if !cmd.Flags().Changed("verbose") {
			cfg.Verbosity = defaultVerbosity
		}
	}

	root.AddCommand(
		newLoadBitfileCommand(cfg, stdio),
		newBootonlyCommand(cfg, stdio),
		newRunbenchCommand(cfg, stdio),
		newConsoleCommand(cfg, stdio),
	)

	return root
}
