// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config holds the immutable per-invocation configuration. It is
// built once from the CLI (merged over an optional YAML defaults file) and
// read-only thereafter.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultsFile is the optional per-directory YAML file flag defaults are
// read from.
const DefaultsFile = ".beriboot.yaml"

// Interface defaults per backend.
const (
	DefaultFPGAInterface = "atse0"
	DefaultQemuInterface = "le0"
)

// Timeouts are the pattern wait budgets of the individual phases. The zero
// value of a field means the built-in default.
type Timeouts struct {
	Bitstream     time.Duration `yaml:"bitstream"`
	Kernel        time.Duration `yaml:"kernel"`
	ConsoleAttach time.Duration `yaml:"console_attach"`
	Init          time.Duration `yaml:"init"`
	Login         time.Duration `yaml:"login"`
	Shell         time.Duration `yaml:"shell"`
	Network       time.Duration `yaml:"network"`
	Transfer      time.Duration `yaml:"transfer"`
	Benchmark     time.Duration `yaml:"benchmark"`
}

func (t *Timeouts) applyDefaults() {
	defaults := Timeouts{
		Bitstream:     160 * time.Second,
		Kernel:        3000 * time.Second,
		ConsoleAttach: 30 * time.Second,
		Init:          5 * time.Minute,
		Login:         15 * time.Minute,
		Shell:         3 * time.Minute,
		Network:       300 * time.Second,
		Transfer:      2400 * time.Second,
		Benchmark:     10000 * time.Second,
	}

	for _, f := range []struct {
		dst *time.Duration
		def time.Duration
	}{
		{&t.Bitstream, defaults.Bitstream},
		{&t.Kernel, defaults.Kernel},
		{&t.ConsoleAttach, defaults.ConsoleAttach},
		{&t.Init, defaults.Init},
		{&t.Login, defaults.Login},
		{&t.Shell, defaults.Shell},
		{&t.Network, defaults.Network},
		{&t.Transfer, defaults.Transfer},
		{&t.Benchmark, defaults.Benchmark},
	} {
		if *f.dst <= 0 {
			*f.dst = f.def
		}
	}
}

// Config is the immutable configuration for one invocation.
type Config struct {
	// Hardware control.
	Berictl    string `yaml:"berictl"`
	CableID    string `yaml:"cable_id"`
	Bitfile    string `yaml:"bitfile"`
	KernelImg  string `yaml:"kernel_img"`
	KernelAddr uint64 `yaml:"kernel_addr"`

	// Backend selection and QEMU overrides.
	UseQemu       bool   `yaml:"use_qemu"`
	QemuPath      string `yaml:"qemu_path"`
	QemuDiskImage string `yaml:"qemu_disk_image"`
	QemuSSHPort   int    `yaml:"qemu_ssh_port"`
	CPUKind       string `yaml:"cpu_kind"`

	// Target access.
	SSHKey           string `yaml:"ssh_key"`
	User             string `yaml:"user"`
	Target           string `yaml:"target"`
	NetworkInterface string `yaml:"network_interface"`

	// Interfaces whose driver never prints the "link state changed" banner.
	// Kept as an explicit capability list instead of inferring it from the
	// interface name.
	NoLinkStateBanner []string `yaml:"no_link_state_banner"`

	// Benchmark run.
	BenchDir         string   `yaml:"-"`
	ScriptName       string   `yaml:"script_name"`
	ScriptArgs       string   `yaml:"script_args"`
	PreCommand       string   `yaml:"pre_command"`
	OutPath          string   `yaml:"out_path"`
	LocalOutPath     string   `yaml:"local_out_path"`
	ExtraInputFiles  []string `yaml:"extra_input_files"`
	ExtraOutputFiles []string `yaml:"extra_output_files"`
	FailString       string   `yaml:"fail_string"`
	LazyBinding      bool     `yaml:"lazy_binding"`

	// Pipeline elisions.
	SkipBoot    bool `yaml:"-"`
	SkipCopy    bool `yaml:"-"`
	SkipBitfile bool `yaml:"-"`

	Interact  bool `yaml:"-"`
	Verbosity int  `yaml:"verbosity"`

	Timeouts Timeouts `yaml:"timeouts"`
}

// New returns a [Config] with built-in defaults applied.
func New() *Config {
	home, _ := os.UserHomeDir()

	cfg := &Config{
		Berictl:           "berictl",
		CableID:           "1",
		Bitfile:           "DE4_BERI.sof",
		KernelImg:         "bsd.bz2",
		KernelAddr:        0x100000,
		QemuSSHPort:       12345,
		SSHKey:            home + "/.ssh/id_rsa",
		User:              "ctsrd",
		Target:            "de4",
		NoLinkStateBanner: []string{DefaultQemuInterface},
		ScriptName:        "run_jenkins-bluehive.sh",
		OutPath:           "*results*",
		FailString:        "FAILED RUNNING BENCHMARKS",
	}

	cfg.Timeouts.applyDefaults()

	return cfg
}

// LoadDefaults merges the YAML defaults file at path into the config if the
// file exists. A missing file is not an error.
func (c *Config) LoadDefaults(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("read defaults file: %w", err)
	}

	err = yaml.Unmarshal(data, c)
	if err != nil {
		return fmt.Errorf("parse defaults file %s: %w", path, err)
	}

	c.Timeouts.applyDefaults()

	return nil
}

// Interface returns the configured board network interface, defaulting per
// backend.
func (c *Config) Interface() string {
	if c.NetworkInterface != "" {
		return c.NetworkInterface
	}

	if c.UseQemu {
		return DefaultQemuInterface
	}

	return DefaultFPGAInterface
}

// LinkStateBanner returns whether the interface's driver prints the
// "link state changed" banner on ifconfig up.
func (c *Config) LinkStateBanner(iface string) bool {
	return !slices.Contains(c.NoLinkStateBanner, iface)
}

// PublicKey returns the path of the public half of the configured SSH key.
func (c *Config) PublicKey() string {
	return c.SSHKey + ".pub"
}
