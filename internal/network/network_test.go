// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package network_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/network"
	"github.com/aibor/beriboot/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const prompt = "root@qemu-test:~ # "

func newController(cfg *config.Config) *network.Controller {
	return &network.Controller{
		Config:   cfg,
		Reporter: report.New(io.Discard, 0),
	}
}

func TestControllerBringUpQemu(t *testing.T) {
	cfg := config.New()
	cfg.UseQemu = true

	stream, script := console.NewScriptedStream(nil,
		func(line string, s *console.Script) {
			switch {
			case line == "":
				s.Emit(prompt)
			case strings.HasPrefix(line, "/sbin/ifconfig le0 up"):
				s.EmitLn("__COMMAND SUCCESSFUL__")
				s.Emit(prompt)
			case line == "/sbin/dhclient le0":
				s.EmitLn("bound to 10.0.2.15 -- renewal in 42.")
				s.Emit(prompt)
			}
		})
	defer stream.Close()

	err := newController(cfg).BringUp(
		t.Context(), console.NewSession(stream, nil))
	require.NoError(t, err)

	// le0 never prints the link-state banner and the emulated device
	// needs no devctl.
	for _, line := range script.Sent() {
		assert.NotContains(t, line, "devctl")
	}
}

func TestControllerBringUpFPGA(t *testing.T) {
	cfg := config.New()

	stream, _ := console.NewScriptedStream(nil,
		func(line string, s *console.Script) {
			switch {
			case line == "":
				s.Emit(prompt)
			case line == "/usr/sbin/devctl enable atse0":
				s.EmitLn("atse0: bpf attached")
				s.Emit(prompt)
			case strings.HasPrefix(line, "/sbin/ifconfig atse0 up"):
				s.EmitLn("__COMMAND SUCCESSFUL__")
				s.Emit(prompt)
				s.EmitLn("atse0: link state changed to UP")
			case line == "/sbin/dhclient atse0":
				s.EmitLn("bound to 192.168.1.25 -- renewal in 300.")
				s.Emit(prompt)
			}
		})
	defer stream.Close()

	err := newController(cfg).BringUp(
		t.Context(), console.NewSession(stream, nil))
	require.NoError(t, err)
}

func TestControllerBringUpDHCPTimeout(t *testing.T) {
	cfg := config.New()
	cfg.UseQemu = true
	cfg.Timeouts.Network = 300 * time.Millisecond

	stream, _ := console.NewScriptedStream(nil,
		func(line string, s *console.Script) {
			switch {
			case line == "":
				s.Emit(prompt)
			case strings.HasPrefix(line, "/sbin/ifconfig le0 up"):
				s.EmitLn("__COMMAND SUCCESSFUL__")
				s.Emit(prompt)
			}
		})
	defer stream.Close()

	err := newController(cfg).BringUp(
		t.Context(), console.NewSession(stream, nil))
	require.ErrorIs(t, err, console.ErrExpectTimeout)
}

func TestControllerBringDown(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "detached",
			response: "atse0: detached",
		},
		{
			name:     "not configured",
			response: "Failed to disable atse0: Device not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()

			stream, _ := console.NewScriptedStream(nil,
				func(line string, s *console.Script) {
					switch {
					case strings.HasPrefix(line, "/sbin/ifconfig atse0 down"):
						s.EmitLn("__COMMAND SUCCESSFUL__")
						s.Emit(prompt)
					case line == "/usr/sbin/devctl disable atse0":
						s.EmitLn(tt.response)
					}
				})
			defer stream.Close()

			err := newController(cfg).BringDown(
				t.Context(), console.NewSession(stream, nil))
			require.NoError(t, err)
		})
	}
}

func TestControllerIPAddress(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		cfg := config.New()

		stream, _ := console.NewScriptedStream(nil,
			func(line string, s *console.Script) {
				if line == "ifconfig atse0" {
					s.EmitLn("atse0: flags=8843<UP,BROADCAST> metric 0")
					s.EmitLn("	inet 10.0.2.15 netmask 0xffffff00")
					s.Emit(prompt)
				}
			})
		defer stream.Close()

		addr, err := newController(cfg).IPAddress(
			t.Context(), console.NewSession(stream, nil))
		require.NoError(t, err)
		assert.Equal(t, "10.0.2.15", addr)
	})

	t.Run("no such interface", func(t *testing.T) {
		cfg := config.New()

		stream, _ := console.NewScriptedStream(nil,
			func(line string, s *console.Script) {
				if line == "ifconfig atse0" {
					s.EmitLn("ifconfig: interface atse0 does not exist")
					s.Emit(prompt)
				}
			})
		defer stream.Close()

		_, err := newController(cfg).IPAddress(
			t.Context(), console.NewSession(stream, nil))
		require.ErrorIs(t, err, network.ErrNoSuchInterface)
		require.NotErrorIs(t, err, console.ErrExpectTimeout)
	})
}
