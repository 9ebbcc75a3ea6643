// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import (
	"context"
	"strings"
)

// Decompress unpacks a compressed artifact in place and returns the path of
// the unpacked file. Uncompressed paths are returned unchanged.
//
// QEMU cannot boot compressed images, unlike the hardware loader which
// decompresses on the fly.
func (r *Runner) Decompress(ctx context.Context, path string) (string, error) {
	switch {
	case strings.HasSuffix(path, ".bz2"):
		err := r.Run(ctx, "bunzip2", path)
		if err != nil {
			return "", err
		}

		return strings.TrimSuffix(path, ".bz2"), nil
	case strings.HasSuffix(path, ".xz"):
		err := r.Run(ctx, "xz", "-d", path)
		if err != nil {
			return "", err
		}

		return strings.TrimSuffix(path, ".xz"), nil
	default:
		return path, nil
	}
}
