// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aibor/beriboot/internal/bench"
	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/network"
)

// fpgaSettleDelay is waited after boot before the first SSH connection. The
// board needs a moment after userspace is up until sshd actually accepts
// connections.
const fpgaSettleDelay = 20 * time.Second

func newRunbenchCommand(cfg *config.Config, stdio IO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runbench BENCHDIR",
		Short: "Copy a benchmark tree to the target, run it and fetch results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.BenchDir = args[0]

			if err := cfg.ValidateBench(); err != nil {
				return err
			}

			if cfg.Interact && !stdinIsTerminal(stdio.Stdin) {
				return ErrNoTerminal
			}

			app := newApp(cfg, stdio)
			defer app.cleanup.run()

			return app.runBench(cmd.Context())
		},
	}

	fl := cmd.Flags()
	fl.DurationVar(&cfg.Timeouts.Benchmark, "timeout",
		cfg.Timeouts.Benchmark, "how long the benchmark may run")
	fl.StringVarP(&cfg.ScriptName, "script-name", "s", cfg.ScriptName,
		"driver script inside BENCHDIR")
	fl.StringVarP(&cfg.ScriptArgs, "script-args", "a", cfg.ScriptArgs,
		"arguments for the driver script")
	fl.StringVar(&cfg.PreCommand, "pre-command", cfg.PreCommand,
		"shell command run on the target before the benchmark")
	fl.StringVarP(&cfg.OutPath, "out-path", "o", cfg.OutPath,
		"result glob inside the benchmark dir")
	fl.StringVar(&cfg.LocalOutPath, "local-out-path", cfg.LocalOutPath,
		"local directory results are copied to, default cwd")
	fl.StringArrayVar(&cfg.ExtraInputFiles, "extra-input-files", nil,
		"additional files to copy to the target")
	fl.StringArrayVar(&cfg.ExtraOutputFiles, "extra-output-files", nil,
		"additional files to copy back")
	fl.StringVarP(&cfg.User, "user", "u", cfg.User,
		"user the benchmark runs as")
	fl.StringVarP(&cfg.Target, "target", "t", cfg.Target,
		"SSH host of the target board")
	fl.BoolVar(&cfg.SkipBoot, "skip-boot", false,
		"attach to an already booted board instead of booting")
	fl.BoolVar(&cfg.SkipCopy, "skip-copy", false,
		"assume the benchmark tree is already on the target")
	fl.BoolVar(&cfg.SkipBitfile, "skip-bitfile", false,
		"assume the bitfile is already loaded")
	fl.BoolVar(&cfg.LazyBinding, "lazy-binding", false,
		"allow lazy runtime binding instead of forcing eager binds")
	fl.BoolVarP(&cfg.Interact, "interact", "i", false,
		"hand the console over after the run")

	return cmd
}

func (a *app) runBench(ctx context.Context) error {
	adapter := a.adapter()
	netctl := &network.Controller{Config: a.cfg, Reporter: a.reporter}

	var (
		sess *console.Session
		err  error
	)

	if a.cfg.SkipBoot {
		sess, err = a.attach(ctx, adapter)
		if err != nil {
			return err
		}

		// The lease of a board that has been sitting at the prompt has
		// usually expired, so cycle the interface for a fresh one.
		a.reporter.Phase("turn network on")

		if err := netctl.BringDown(ctx, sess); err != nil {
			return err
		}

		if err := netctl.BringUp(ctx, sess); err != nil {
			return err
		}
	} else {
		sess, err = a.boot(ctx, adapter)
		if err != nil {
			return err
		}

		if !a.cfg.UseQemu {
			a.reporter.Info("Sleeping for %v to ensure FPGA is ready",
				fpgaSettleDelay)

			select {
			case <-time.After(fpgaSettleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	target, port := a.resolveTarget(ctx, netctl, sess)

	runner := &bench.Runner{
		Config:   a.cfg,
		Reporter: a.reporter,
		Host:     a.hostRunner(),
		Target:   target,
		Port:     port,
		Trace: func(ctx context.Context) {
			if err := adapter.Streamtrace(ctx); err != nil {
				slog.Warn("Trace dump failed", slog.Any("error", err))
			}
		},
	}

	a.reporter.Phase("transfer benchmark")

	if a.cfg.SkipCopy {
		a.reporter.Info("skipping benchmark copy")
	} else if err := runner.TransferIn(ctx); err != nil {
		return err
	}

	a.reporter.Phase("turn network off")

	if err := netctl.BringDown(ctx, sess); err != nil {
		return err
	}

	a.reporter.Phase("running benchmark")

	result, err := runner.Execute(ctx, sess)
	if err != nil {
		return err
	}

	if result.Kind == bench.ResultKernelPanic && result.Backtrace != "" {
		a.reporter.Error("%s", result.Backtrace)
	}

	a.reporter.Phase("turn network on")

	if err := netctl.BringUp(ctx, sess); err != nil {
		return err
	}

	a.reporter.Phase("transfer benchmark result")

	if err := runner.TransferOut(ctx); err != nil {
		return err
	}

	if !result.OK() {
		return fmt.Errorf("%w: %s", ErrBenchmarkFailed, result.Kind)
	}

	if a.cfg.Interact {
		return a.interact(sess)
	}

	return nil
}

// resolveTarget picks the SSH destination. Board hostname assignment is
// flaky, so the address the board actually acquired wins over the
// configured name.
func (a *app) resolveTarget(
	ctx context.Context,
	netctl *network.Controller,
	sess *console.Session,
) (string, int) {
	if a.cfg.UseQemu {
		return "localhost", a.cfg.QemuSSHPort
	}

	ip, err := netctl.IPAddress(ctx, sess)
	if err != nil {
		a.reporter.Info("could not infer board IP (%v), using %s",
			err, a.cfg.Target)

		return a.cfg.Target, 22
	}

	a.reporter.Info("inferred board IP as: %s", ip)

	return ip, 22
}
