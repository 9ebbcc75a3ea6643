// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bringup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aibor/beriboot/internal/backend"
	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// bootResponder plays the target side of a successful boot and login.
func bootResponder(line string, s *console.Script) {
	switch {
	case line == "root":
		s.Emit("root@beri:~ # ")
	case line == "sh":
		s.Emit("# ")
	case strings.HasPrefix(line, "export PS1="):
		s.Emit("root@qemu-test:~ # ")
	case line == "service sshd restart":
		s.EmitLn("Starting sshd.")
		s.Emit("root@qemu-test:~ # ")
	case strings.Contains(line, "echo '__COMMAND'"):
		s.EmitLn("__COMMAND SUCCESSFUL__")
		s.Emit("root@qemu-test:~ # ")
	}
}

type fakeAdapter struct {
	sess  *console.Session
	calls []string
}

func (f *fakeAdapter) LoadBitstream(context.Context) error {
	f.calls = append(f.calls, "bitstream")
	return nil
}

func (f *fakeAdapter) LoadKernel(context.Context) error {
	f.calls = append(f.calls, "kernel")
	return nil
}

func (f *fakeAdapter) ConfigureTracing(context.Context) error {
	f.calls = append(f.calls, "tracing")
	return nil
}

func (f *fakeAdapter) Boot(context.Context) (*console.Session, error) {
	f.calls = append(f.calls, "boot")
	return f.sess, nil
}

func (f *fakeAdapter) Console(context.Context) (*console.Session, error) {
	return nil, backend.ErrNotSupported
}

func (f *fakeAdapter) Streamtrace(context.Context) error {
	f.calls = append(f.calls, "streamtrace")
	return nil
}

func (f *fakeAdapter) NeedsCableCleanup() bool { return false }

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.SSHKey = filepath.Join(t.TempDir(), "id_rsa")

	pubkey := "ssh-rsa " + strings.Repeat("A", 300) + " tester@host\n"
	err := os.WriteFile(cfg.PublicKey(), []byte(pubkey), 0o600)
	require.NoError(t, err)

	return cfg
}

func TestSequencerRun(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, bootResponder)
	defer stream.Close()

	script.EmitLn("start_init: trying /sbin/init")
	script.EmitLn("login:")

	adapter := &fakeAdapter{sess: console.NewSession(stream, nil)}
	cfg := testConfig(t)

	seq := NewSequencer(cfg, adapter, report.New(io.Discard, 0), nil)

	sess, err := seq.Run(t.Context())
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, StateDone, seq.State())
	assert.Equal(t,
		[]string{"bitstream", "kernel", "tracing", "boot"}, adapter.calls)

	sent := script.Sent()
	assert.Contains(t, sent, "root")
	assert.Contains(t, sent, "sh")

	var chunks, useradd int

	for _, line := range sent {
		if strings.Contains(line, "printf %s '") {
			chunks++
		}

		if strings.Contains(line, "pw useradd -n ctsrd") {
			useradd++
		}
	}

	// 320 key bytes at 150 per line.
	assert.Equal(t, 3, chunks)
	assert.Equal(t, 1, useradd)
}

func TestSequencerRunSkipBitfile(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, bootResponder)
	defer stream.Close()

	script.EmitLn("start_init: trying /sbin/init")
	script.EmitLn("login:")

	adapter := &fakeAdapter{sess: console.NewSession(stream, nil)}
	cfg := testConfig(t)
	cfg.SkipBitfile = true

	seq := NewSequencer(cfg, adapter, report.New(io.Discard, 0), nil)

	_, err := seq.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"kernel", "tracing", "boot"}, adapter.calls)
}

func TestSequencerLoginShellOpen(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, bootResponder)
	defer stream.Close()

	script.EmitLn("start_init: trying /sbin/init")
	script.EmitLn("exec /bin/sh")
	script.Emit("# ")

	cfg := testConfig(t)
	seq := NewSequencer(cfg, nil, report.New(io.Discard, 0), nil)

	err := seq.login(t.Context(), console.NewSession(stream, nil))
	require.NoError(t, err)

	assert.Equal(t, StateShellReady, seq.State())
	assert.NotContains(t, script.Sent(), "root")
}

func TestSequencerLoginInitFailure(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.EmitLn("Enter full pathname of shell or RETURN for /bin/sh")

	cfg := testConfig(t)
	seq := NewSequencer(cfg, nil, report.New(io.Discard, 0), nil)

	err := seq.login(t.Context(), console.NewSession(stream, nil))
	require.ErrorIs(t, err, console.ErrExplicitFailure)

	assert.Equal(t, StateStart, seq.State())
}

func TestSequencerProvisionUserIdempotent(t *testing.T) {
	var created int

	stream, script := console.NewScriptedStream(nil,
		func(line string, s *console.Script) {
			if !strings.Contains(line, "pw useradd") {
				bootResponder(line, s)

				return
			}

			// The guard skips the create once the user exists.
			if created == 0 {
				created++
				s.EmitLn("Created user ctsrd")
			}

			s.EmitLn("__COMMAND SUCCESSFUL__")
			s.Emit("root@qemu-test:~ # ")
		})
	defer stream.Close()

	sess := console.NewSession(stream, nil)
	seq := NewSequencer(testConfig(t), nil, report.New(io.Discard, 0), nil)

	require.NoError(t, seq.provisionUser(t.Context(), sess))
	require.NoError(t, seq.provisionUser(t.Context(), sess))

	assert.Equal(t, 1, created)

	var guarded int

	for _, line := range script.Sent() {
		if strings.Contains(line, "if ! pw user show") {
			guarded++
		}
	}

	assert.Equal(t, 2, guarded)
}

func TestSequencerProvisionSSHMissingKey(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	cfg := config.New()
	cfg.SSHKey = filepath.Join(t.TempDir(), "id_rsa")

	seq := NewSequencer(cfg, nil, report.New(io.Discard, 0), nil)

	err := seq.provisionSSH(t.Context(), console.NewSession(stream, nil))
	require.NoError(t, err)

	assert.Empty(t, script.Sent())
}
