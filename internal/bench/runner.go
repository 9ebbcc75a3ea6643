// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/host"
	"github.com/aibor/beriboot/internal/report"
)

const (
	doneBanner  = "DONE RUNNING BENCHMARKS"
	panicBanner = "KDB: enter: "

	// badCmd is appended with || so a non-zero script exit produces a
	// recognizable "not found" line even when the script prints nothing.
	badCmd = "/this/command/does/not/exist"

	backtraceTimeout = 60 * time.Second
	debuggerPrompt   = "db> "
)

// Runner runs one benchmark tree against one resolved target.
type Runner struct {
	Config   *config.Config
	Reporter *report.Reporter
	Host     *host.Runner

	// Target is the resolved SSH host, Port its SSH port.
	Target string
	Port   int

	// Trace is an optional hardware trace dump fired as a diagnostic when
	// the benchmark phase times out.
	Trace func(ctx context.Context)
}

// Execute runs the driver script over the console and classifies the
// outcome. Timeouts and a dying console are returned as errors; everything
// the target itself reports ends up in the [RunResult].
func (r *Runner) Execute(
	ctx context.Context,
	sess *console.Session,
) (RunResult, error) {
	if err := r.prepare(ctx, sess); err != nil {
		return RunResult{}, err
	}

	cmd := fmt.Sprintf("./%s %s || %s",
		r.Config.ScriptName, r.Config.ScriptArgs, badCmd)

	if err := sess.SendLine(cmd); err != nil {
		return RunResult{}, err
	}

	result := sess.RunPhase(ctx, console.Phase{
		Label:   "benchmark",
		Success: []console.Pattern{console.Literal(doneBanner)},
		Failure: []console.Pattern{
			console.Literal(": Command not found."),
			console.Literal(badCmd + ": not found"),
			console.Literal(r.Config.FailString),
			console.Literal(panicBanner),
		},
		Timeout:   r.Config.Timeouts.Benchmark,
		OnTimeout: r.Trace,
		// The panic banner is raced explicitly so it can be classified.
		NoPanicGuard: true,
	})

	switch result.Outcome {
	case console.OutcomeSuccess:
		return RunResult{Kind: ResultCompleted}, nil
	case console.OutcomeExplicitFailure:
		r.Reporter.Error("Failed to run benchmark")

		switch result.Match.Index {
		case 0:
			return RunResult{Kind: ResultCommandNotFound}, nil
		case 1:
			return RunResult{Kind: ResultScriptFailed}, nil
		case 2:
			return RunResult{Kind: ResultExplicitFailure}, nil
		default:
			return RunResult{
				Kind:      ResultKernelPanic,
				Backtrace: r.backtrace(ctx, sess),
			}, nil
		}
	default:
		return RunResult{}, result.Err()
	}
}

// prepare changes into the benchmark directory and pins the binding mode.
// Binds are eager by default so benchmark runtime is not skewed by binding
// trampolines; lazy mode unsets the override instead.
func (r *Runner) prepare(ctx context.Context, sess *console.Session) error {
	if err := sess.SendLine(""); err != nil {
		return err
	}

	if err := sess.ExpectPrompt(ctx, 0); err != nil {
		return err
	}

	cmds := []string{
		fmt.Sprintf("cd %s && ls -la", r.TargetDir()),
	}

	if r.Config.LazyBinding {
		cmds = append(cmds,
			"unset LD_CHERI_BIND_NOW",
			"unset LD_BIND_NOW",
		)
	} else {
		cmds = append(cmds,
			"export LD_CHERI_BIND_NOW=1",
			"export LD_BIND_NOW=1",
		)
	}

	if r.Config.PreCommand != "" {
		cmds = append(cmds, r.Config.PreCommand)
	}

	// Record the environment in the transcript.
	cmds = append(cmds, "env")

	for _, cmd := range cmds {
		if err := sess.RunCommand(ctx, cmd, 0); err != nil {
			return err
		}
	}

	return nil
}

// backtrace requests a single backtrace from the kernel debugger. Best
// effort: the debugger may be wedged, in which case whatever made it into
// the transcript has to do.
func (r *Runner) backtrace(
	ctx context.Context,
	sess *console.Session,
) string {
	r.Reporter.Error("Panic! Extracting backtrace...")

	if err := sess.SendLine("bt"); err != nil {
		return ""
	}

	// Raw stream expect: the panic banners would trip the session's guard
	// while reading the debugger output.
	match, err := sess.Stream().Expect(ctx,
		[]console.Pattern{console.Literal(debuggerPrompt)},
		backtraceTimeout)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(match.Before)
}
