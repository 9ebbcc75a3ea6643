// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bringup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aibor/beriboot/internal/console"
)

// pubkeyChunkSize bounds the line length of the authorized_keys writes.
// Public keys are longer than the console's line buffer, so they are
// appended piecewise.
const pubkeyChunkSize = 150

const sshdRestartTimeout = 120 * time.Second

// sshdRestartResponses are all acceptable: images without /sbin/service get
// their key installed anyway and sshd picks it up on next boot.
var sshdRestartResponses = []console.Pattern{
	console.Literal("service: not found"),
	console.Literal("Starting sshd."),
	console.Literal("Cannot 'restart' sshd."),
}

// provisionSSH installs the local public key for root over the live console.
// The console is the only provisioning channel at this point; the network is
// not up yet. Missing local key means no SSH setup, which is fine for
// console-only runs.
func (s *Sequencer) provisionSSH(
	ctx context.Context,
	sess *console.Session,
) error {
	path := s.Config.PublicKey()

	key, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.Reporter.Info(
				"no public key at %s ===> skipping SSH setup", path)

			return nil
		}

		return fmt.Errorf("read public key: %w", err)
	}

	pubkey := strings.TrimSpace(string(key))

	cmds := []string{"mkdir -p /root/.ssh"}

	for i := 0; i < len(pubkey); i += pubkeyChunkSize {
		end := min(i+pubkeyChunkSize, len(pubkey))
		cmds = append(cmds, fmt.Sprintf(
			"printf %%s '%s' >> /root/.ssh/authorized_keys", pubkey[i:end]))
	}

	cmds = append(cmds,
		`printf '\n' >> /root/.ssh/authorized_keys`,
		"chmod 600 /root/.ssh/authorized_keys",
		"chmod 700 /root /root/.ssh/",
		"echo 'PermitRootLogin without-password' >> /etc/ssh/sshd_config",
		"grep -n PermitRootLogin /etc/ssh/sshd_config",
	)

	for _, cmd := range cmds {
		if err := sess.RunCommand(ctx, cmd, 0); err != nil {
			return err
		}
	}

	if err := s.restartSSHD(ctx, sess); err != nil {
		return err
	}

	// Root's key also authorizes the benchmark user when the image already
	// carries a home directory for it. A failing test -e just means it
	// doesn't.
	propagate := fmt.Sprintf(
		"test -e /home/%[1]s/.ssh/authorized_keys"+
			" && cat /root/.ssh/authorized_keys"+
			" >> /home/%[1]s/.ssh/authorized_keys",
		s.Config.User)

	err = sess.RunCommand(ctx, propagate, 0)
	if err != nil && !errors.Is(err, console.ErrCommandFailed) {
		return err
	}

	s.Reporter.Info("===> SSH authorized_keys set up")

	return nil
}

func (s *Sequencer) restartSSHD(
	ctx context.Context,
	sess *console.Session,
) error {
	if err := sess.SendLine("service sshd restart"); err != nil {
		return err
	}

	_, err := sess.Expect(ctx, sshdRestartResponses, sshdRestartTimeout)
	if err != nil {
		return err
	}

	return sess.ExpectPrompt(ctx, 0)
}

// provisionUser creates the benchmark user with a home directory and root's
// authorized keys. It checks for the user first, so reruns against a
// persistent disk image are safe.
func (s *Sequencer) provisionUser(
	ctx context.Context,
	sess *console.Session,
) error {
	cmd := fmt.Sprintf(
		"if ! pw user show %[1]s -q > /dev/null; then"+
			" pw useradd -n %[1]s -c %[1]s-test-user -s /bin/sh -m -w none"+
			" && mkdir -p /home/%[1]s"+
			" && cp -a /root/.ssh /home/%[1]s/.ssh"+
			" && chown -R %[1]s /home/%[1]s/.ssh"+
			` && echo "Created user %[1]s"; fi`,
		s.Config.User)

	return sess.RunCommand(ctx, cmd, 0)
}
