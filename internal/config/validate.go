// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
)

// CPU kinds of the softcore, used to infer the QEMU binary suffix.
var cpuKinds = map[string]string{
	"mips":     "cheri256",
	"cheri256": "cheri256",
	"cheri128": "cheri128",
}

// QemuBinarySuffix maps the CPU kind to the qemu-system binary suffix.
func QemuBinarySuffix(cpuKind string) (string, error) {
	suffix, ok := cpuKinds[cpuKind]
	if !ok {
		return "", &Error{
			Field: "cpu-kind",
			Err:   fmt.Errorf("%w: %s", ErrCPUKindInvalid, cpuKind),
		}
	}

	return suffix, nil
}

// ValidateBitfile checks the bitstream artifact. The emulated backend does
// not use one.
func (c *Config) ValidateBitfile() error {
	if c.UseQemu {
		return nil
	}

	return fileExists("bitfile", c.Bitfile)
}

// ValidateBoot checks the artifacts needed for a full boot.
func (c *Config) ValidateBoot() error {
	if !c.SkipBitfile {
		if err := c.ValidateBitfile(); err != nil {
			return err
		}
	}

	return fileExists("kernel-img", c.KernelImg)
}

// ValidateBench checks the runbench specific inputs.
func (c *Config) ValidateBench() error {
	if c.SkipBoot && c.UseQemu {
		return &Error{
			Field: "skip-boot",
			Err: fmt.Errorf(
				"%w: skip-boot requires an FPGA console to attach to",
				ErrIncompatibleFlags,
			),
		}
	}

	if err := fileExists("benchdir", c.BenchDir); err != nil {
		return err
	}

	if c.SkipBoot {
		return nil
	}

	return c.ValidateBoot()
}

func fileExists(field, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &Error{
			Field: field,
			Err:   fmt.Errorf("%w: %s", ErrArtifactMissing, path),
		}
	}

	return nil
}
