// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"context"
	"log/slog"
	"time"
)

// Prompt patterns of the target shells. After bring-up the prompt is
// normalized so [DefaultPrompt] matches everywhere.
var (
	// DefaultPrompt matches the csh prompt as well as the normalized PS1.
	DefaultPrompt = Regex(`root@.+:.+# `)

	// ShPrompt matches a bare /bin/sh prompt without PS1 set.
	ShPrompt = Literal("# ")
)

// Panic banners of the target kernel. They are appended as implicit failure
// patterns to every phase unless the phase watches for them itself.
var panicBanners = []Pattern{
	Literal("panic: trap"),
	Literal("Stopped at"),
	Literal("KDB: enter: panic"),
}

// Command result markers. Commands executed via [Session.RunCommand] are
// suffixed with an echo of one of these so success is detected reliably even
// for commands without distinctive output. The markers are echoed as two
// words so the command line itself never matches.
const (
	cmdSuccessMarker  = "__COMMAND SUCCESSFUL__"
	cmdFailedMarker   = "__COMMAND FAILED__"
	cmdResultSuffix   = " ;if test $? -eq 0; then echo '__COMMAND' 'SUCCESSFUL__'; else echo '__COMMAND' 'FAILED__'; fi"
	lineContinuation  = "\n> "
	defaultCmdTimeout = 600 * time.Second
	promptTimeout     = 60 * time.Second
)

// Phase is a named step of the bring-up or benchmark pipeline. Phases are
// stateless descriptors; the runtime result is a [Result].
type Phase struct {
	Label   string
	Success []Pattern
	Failure []Pattern
	Timeout time.Duration

	// OnTimeout is a best-effort diagnostic action, e.g. a hardware trace
	// dump. Its own failure never masks the timeout.
	OnTimeout func(context.Context)

	// NoPanicGuard disables the implicit panic failure patterns. Set it on
	// phases that race on panic banners themselves.
	NoPanicGuard bool
}

// Outcome classifies how a [Phase] ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeExplicitFailure
	OutcomeTimeout
	OutcomeStreamClosed
)

// String implements [fmt.Stringer].
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeExplicitFailure:
		return "explicit failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeStreamClosed:
		return "stream closed"
	default:
		return "unknown"
	}
}

// Result is the runtime result of a [Phase].
type Result struct {
	Phase   string
	Outcome Outcome
	// Match is valid for [OutcomeSuccess] and [OutcomeExplicitFailure].
	Match Match
}

// Err returns nil for a successful result and a [PhaseError] otherwise.
func (r Result) Err() error {
	var err error

	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeExplicitFailure:
		err = ErrExplicitFailure
	case OutcomeTimeout:
		err = ErrExpectTimeout
	case OutcomeStreamClosed:
		err = ErrStreamClosed
	}

	return &PhaseError{
		Phase:   r.Phase,
		Outcome: r.Outcome,
		Err:     err,
	}
}

// Session is a stateful handle bound to one booted target. It turns a bare
// [Stream] into a sequence of typed [Phase] executions.
//
// At most one Session is live per invocation and it must be closed
// explicitly.
type Session struct {
	// Prompt is the shell prompt pattern commands resynchronize on.
	Prompt Pattern

	stream *Stream
	log    *slog.Logger
}

// NewSession creates a [Session] on the given stream.
func NewSession(stream *Stream, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		Prompt: DefaultPrompt,
		stream: stream,
		log:    log,
	}
}

// Stream returns the underlying [Stream] for raw interaction.
func (s *Session) Stream() *Stream {
	return s.stream
}

// Close releases the console process.
func (s *Session) Close() error {
	return s.stream.Close()
}

// RunPhase waits for the phase's patterns and classifies the outcome.
//
// It sends nothing by default; callers issue commands explicitly. It never
// retries and returns exactly one of the four [Outcome]s for any expected
// console condition.
func (s *Session) RunPhase(ctx context.Context, phase Phase) Result {
	s.log.Debug("Running phase", slog.String("phase", phase.Label))

	failure := phase.Failure
	if !phase.NoPanicGuard {
		failure = append(append([]Pattern(nil), failure...), panicBanners...)
	}

	patterns := append(append([]Pattern(nil), phase.Success...), failure...)

	match, err := s.stream.Expect(ctx, patterns, phase.Timeout)

	result := Result{Phase: phase.Label}

	switch {
	case err == nil && match.Index < len(phase.Success):
		result.Outcome = OutcomeSuccess
		result.Match = match
	case err == nil:
		match.Index -= len(phase.Success)
		result.Outcome = OutcomeExplicitFailure
		result.Match = match
	case err == ErrExpectTimeout: //nolint:errorlint
		result.Outcome = OutcomeTimeout

		if phase.OnTimeout != nil {
			phase.OnTimeout(ctx)
		}
	default:
		result.Outcome = OutcomeStreamClosed
	}

	if result.Outcome != OutcomeSuccess {
		s.log.Warn("Phase did not succeed",
			slog.String("phase", phase.Label),
			slog.String("outcome", result.Outcome.String()))
	}

	return result
}

// Expect matches raw patterns with the implicit panic guard applied. A
// matched panic banner is returned as a [PhaseError] wrapping
// [ErrGuestPanic].
func (s *Session) Expect(
	ctx context.Context,
	patterns []Pattern,
	timeout time.Duration,
) (Match, error) {
	all := append(append([]Pattern(nil), patterns...), panicBanners...)

	match, err := s.stream.Expect(ctx, all, timeout)
	if err != nil {
		return Match{}, err
	}

	if match.Index >= len(patterns) {
		return Match{}, &PhaseError{
			Phase:   "expect",
			Outcome: OutcomeExplicitFailure,
			Err:     ErrGuestPanic,
		}
	}

	return match, nil
}

// SendLine writes a line to the target.
func (s *Session) SendLine(text string) error {
	return s.stream.SendLine(text)
}

// ExpectPrompt waits for the shell prompt.
func (s *Session) ExpectPrompt(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = promptTimeout
	}

	_, err := s.stream.Expect(ctx, []Pattern{s.Prompt}, timeout)
	if err != nil {
		return &PhaseError{
			Phase:   "prompt",
			Outcome: outcomeFor(err),
			Err:     err,
		}
	}

	return nil
}

// RunCommand executes a shell command on the target and resynchronizes on
// the prompt.
//
// The command is suffixed with a result marker echo, so failure detection
// does not depend on the command's own output.
func (s *Session) RunCommand(
	ctx context.Context,
	cmd string,
	timeout time.Duration,
) error {
	if timeout <= 0 {
		timeout = defaultCmdTimeout
	}

	err := s.stream.SendLine(cmd + cmdResultSuffix)
	if err != nil {
		return &PhaseError{
			Phase:   cmd,
			Outcome: OutcomeStreamClosed,
			Err:     err,
		}
	}

	result := s.RunPhase(ctx, Phase{
		Label:   cmd,
		Success: []Pattern{Literal(cmdSuccessMarker)},
		Failure: []Pattern{
			Literal(cmdFailedMarker),
			Literal(lineContinuation),
		},
		Timeout: timeout,
	})

	if result.Outcome == OutcomeExplicitFailure {
		var err error

		switch result.Match.Index {
		case 0:
			err = ErrCommandFailed
		case 1:
			err = ErrLineContinuation
		default:
			err = ErrGuestPanic
		}

		return &PhaseError{
			Phase:   cmd,
			Outcome: OutcomeExplicitFailure,
			Err:     err,
		}
	}

	if err := result.Err(); err != nil {
		return err
	}

	return s.ExpectPrompt(ctx, promptTimeout)
}

func outcomeFor(err error) Outcome {
	if err == ErrExpectTimeout { //nolint:errorlint
		return OutcomeTimeout
	}

	return OutcomeStreamClosed
}
