// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bench

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// targetFS is the directory on the target the benchmark tree lands in.
const targetFS = "/tmp/benchdir"

// extraTransferTimeout bounds the individual extra file and result copies.
// The main tree copy uses the configured transfer timeout instead since its
// size is unbounded.
const extraTransferTimeout = 600 * time.Second

// scpArgs builds the scp argument list. Host key checking is disabled on
// purpose: the targets are ephemeral and change their keys on every
// reinstall, which would otherwise strand unattended runs.
func scpArgs(key string, port int, src, dst string) []string {
	var args []string

	if port != 22 {
		args = append(args, "-P", strconv.Itoa(port))
	}

	args = append(args,
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "BatchMode=yes",
		"-i", key,
		"-r",
		src, dst,
	)

	return args
}

func (r *Runner) scp(
	ctx context.Context,
	timeout time.Duration,
	src, dst string,
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.Host.Run(ctx, "scp", scpArgs(r.Config.SSHKey, r.Port, src, dst)...)
}

func (r *Runner) remote(p string) string {
	return fmt.Sprintf("%s@%s:%s", r.Config.User, r.Target, p)
}

// TargetDir returns the directory the benchmark tree lands in on the
// target.
func (r *Runner) TargetDir() string {
	return path.Join(targetFS, filepath.Base(r.Config.BenchDir))
}

// TransferIn copies the benchmark tree and any extra input files to the
// target.
func (r *Runner) TransferIn(ctx context.Context) error {
	r.Reporter.Info("Will copy %s to %s", r.Config.BenchDir, targetFS)

	err := r.scp(ctx, r.Config.Timeouts.Transfer,
		r.Config.BenchDir, r.remote(targetFS))
	if err != nil {
		return err
	}

	// Extra files are independent of each other and of the tree that was
	// just copied, so they go in parallel.
	eg, ctx := errgroup.WithContext(ctx)

	for _, extra := range r.Config.ExtraInputFiles {
		eg.Go(func() error {
			return r.scp(ctx, extraTransferTimeout, extra, r.remote(targetFS))
		})
	}

	return eg.Wait()
}

// TransferOut fetches the result files and any extra output files from the
// target into the local destination directory.
func (r *Runner) TransferOut(ctx context.Context) error {
	dst := r.Config.LocalOutPath
	if dst == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		dst = wd
	}

	out := path.Join(r.TargetDir(), r.Config.OutPath)

	if err := r.scp(ctx, extraTransferTimeout, r.remote(out), dst); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	for _, extra := range r.Config.ExtraOutputFiles {
		eg.Go(func() error {
			return r.scp(ctx, extraTransferTimeout, r.remote(extra), dst)
		})
	}

	return eg.Wait()
}
