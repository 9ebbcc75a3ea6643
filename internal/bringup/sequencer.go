// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bringup

import (
	"context"
	"log/slog"
	"time"

	"github.com/aibor/beriboot/internal/backend"
	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

// Console banners of the target's boot sequence.
var (
	startingInit = console.Literal("start_init: trying /sbin/init")
	bootFailure  = console.Literal(
		"Enter full pathname of shell or RETURN for /bin/sh")
	loginPrompt = console.Literal("login:")
	shellOpen   = console.Literal("exec /bin/sh")
)

// setPromptCmd normalizes PS1 of a bare /bin/sh so [console.DefaultPrompt]
// matches for the rest of the run. \$ expands to # for root.
const setPromptCmd = `export PS1="root@qemu-test:~ \\$ "`

const rcShellTimeout = 30 * time.Second

// Sequencer walks the bring-up pipeline in order. It is single use; a fresh
// one is needed per boot attempt.
type Sequencer struct {
	Config   *config.Config
	Adapter  backend.Adapter
	Reporter *report.Reporter

	log   *slog.Logger
	state State
}

// NewSequencer creates a [Sequencer] in [StateStart].
func NewSequencer(
	cfg *config.Config,
	adapter backend.Adapter,
	reporter *report.Reporter,
	log *slog.Logger,
) *Sequencer {
	if log == nil {
		log = slog.Default()
	}

	return &Sequencer{
		Config:   cfg,
		Adapter:  adapter,
		Reporter: reporter,
		log:      log,
	}
}

// State returns the last state reached.
func (s *Sequencer) State() State {
	return s.state
}

func (s *Sequencer) advance(next State) {
	s.log.Debug("Bring-up state reached", slog.String("state", next.String()))
	s.state = next
}

// Run executes the pipeline up to [StateDone] and returns the logged-in
// session.
//
// The session is returned non-nil as soon as boot opened a console, even
// when a later step fails, so the caller can always release it.
func (s *Sequencer) Run(ctx context.Context) (*console.Session, error) {
	if s.Config.SkipBitfile {
		s.Reporter.Info("skipping bitfile load")
	} else {
		if err := s.Adapter.LoadBitstream(ctx); err != nil {
			return nil, err
		}
	}

	s.advance(StateBitstreamLoaded)

	if err := s.Adapter.LoadKernel(ctx); err != nil {
		return nil, err
	}

	s.advance(StateKernelLoaded)

	if err := s.Adapter.ConfigureTracing(ctx); err != nil {
		return nil, err
	}

	s.advance(StateTraceConfigured)

	sess, err := s.Adapter.Boot(ctx)
	if err != nil {
		return nil, err
	}

	s.advance(StateBootTriggered)

	if err := s.login(ctx, sess); err != nil {
		return sess, err
	}

	if err := s.provisionSSH(ctx, sess); err != nil {
		return sess, err
	}

	s.advance(StateSSHKeysProvisioned)

	if err := s.provisionUser(ctx, sess); err != nil {
		return sess, err
	}

	s.advance(StateUserProvisioned)
	s.advance(StateDone)

	return sess, nil
}

// traceDump requests a hardware trace dump as a timeout diagnostic. Its own
// outcome never masks the timeout.
func (s *Sequencer) traceDump(ctx context.Context) {
	if s.Adapter == nil {
		return
	}

	if err := s.Adapter.Streamtrace(ctx); err != nil {
		s.log.Warn("Trace dump failed", slog.Any("error", err))
	}
}

// login waits for init, answers the login prompt and leaves the session in a
// POSIX sh with a normalized prompt.
func (s *Sequencer) login(ctx context.Context, sess *console.Session) error {
	result := sess.RunPhase(ctx, console.Phase{
		Label:     "init",
		Success:   []console.Pattern{startingInit},
		Failure:   []console.Pattern{bootFailure},
		Timeout:   s.Config.Timeouts.Init,
		OnTimeout: s.traceDump,
	})
	if err := result.Err(); err != nil {
		return err
	}

	s.advance(StateInitStarted)
	s.Reporter.Info("===> init running")

	result = sess.RunPhase(ctx, console.Phase{
		Label:     "login prompt",
		Success:   []console.Pattern{loginPrompt, shellOpen},
		Failure:   []console.Pattern{bootFailure},
		Timeout:   s.Config.Timeouts.Login,
		OnTimeout: s.traceDump,
	})
	if err := result.Err(); err != nil {
		return err
	}

	s.advance(StateLoginPromptSeen)

	switch result.Match.Index {
	case 0:
		s.Reporter.Info("===> got login prompt")

		if err := s.loginAsRoot(ctx, sess); err != nil {
			return err
		}
	case 1:
		// /etc/rc dropped us straight into a shell, no login round trip.
		_, err := sess.Expect(ctx,
			[]console.Pattern{console.ShPrompt}, rcShellTimeout)
		if err != nil {
			return err
		}

		s.Reporter.Info("===> /etc/rc completed, got command prompt")

		if err := s.setPrompt(ctx, sess); err != nil {
			return err
		}
	}

	s.advance(StateShellReady)
	s.Reporter.Info("===> booted, shell ready")

	return nil
}

// loginAsRoot sends the login name and normalizes the shell. The root
// account starts csh, which mangles multi-line commands, so it is swapped
// for a POSIX sh right away.
func (s *Sequencer) loginAsRoot(
	ctx context.Context,
	sess *console.Session,
) error {
	if err := sess.SendLine("root"); err != nil {
		return err
	}

	prompts := []console.Pattern{console.DefaultPrompt, console.ShPrompt}

	match, err := sess.Expect(ctx, prompts, s.Config.Timeouts.Shell)
	if err != nil {
		return err
	}

	if match.Index == 0 {
		s.Reporter.Info("===> got csh command prompt, starting POSIX sh")

		if err := sess.SendLine("sh"); err != nil {
			return err
		}

		match, err = sess.Expect(ctx, prompts, s.Config.Timeouts.Shell)
		if err != nil {
			return err
		}
	}

	if match.Index == 1 {
		return s.setPrompt(ctx, sess)
	}

	return nil
}

func (s *Sequencer) setPrompt(
	ctx context.Context,
	sess *console.Session,
) error {
	if err := sess.SendLine(setPromptCmd); err != nil {
		return err
	}

	if err := sess.ExpectPrompt(ctx, time.Minute); err != nil {
		return err
	}

	s.Reporter.Info("===> successfully set PS1")

	return nil
}
