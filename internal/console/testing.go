// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bufio"
	"io"
	"sync"
)

// Script simulates the target side of a console for tests. Output "printed"
// by the simulated target is emitted with [Script.Emit]; lines sent to the
// target are recorded and optionally answered via the OnLine handler.
type Script struct {
	outW *io.PipeWriter
	inR  *io.PipeReader

	onLine func(line string, s *Script)

	mu   sync.Mutex
	sent []string
}

type scriptedConsole struct {
	outR *io.PipeReader
	outW *io.PipeWriter
	inR  *io.PipeReader
	inW  *io.PipeWriter
}

func (c *scriptedConsole) Read(p []byte) (int, error) {
	return c.outR.Read(p) //nolint:wrapcheck
}

func (c *scriptedConsole) Write(p []byte) (int, error) {
	return c.inW.Write(p) //nolint:wrapcheck
}

func (c *scriptedConsole) Close() error {
	_ = c.outR.Close()
	_ = c.outW.Close()
	_ = c.inW.Close()
	_ = c.inR.Close()

	return nil
}

// NewScriptedStream creates a [Stream] backed by an in-memory console.
//
// onLine, if not nil, is invoked for every line sent to the stream and may
// emit responses. The caller must close the stream to release the helper
// goroutines.
func NewScriptedStream(
	sink io.Writer,
	onLine func(line string, s *Script),
) (*Stream, *Script) {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()

	fake := &scriptedConsole{outR: outR, outW: outW, inR: inR, inW: inW}
	script := &Script{outW: outW, inR: inR, onLine: onLine}

	go script.drainInput()

	return NewStream(fake, sink, nil), script
}

// Emit makes the simulated target print text on its console.
func (s *Script) Emit(text string) {
	_, _ = s.outW.Write([]byte(text))
}

// EmitLn is [Script.Emit] plus a trailing newline.
func (s *Script) EmitLn(text string) {
	s.Emit(text + "\n")
}

// CloseOutput simulates the target process exiting.
func (s *Script) CloseOutput() {
	_ = s.outW.Close()
}

// Sent returns all lines sent to the target so far.
func (s *Script) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.sent...)
}

func (s *Script) drainInput() {
	scanner := bufio.NewScanner(s.inR)
	for scanner.Scan() {
		line := scanner.Text()

		s.mu.Lock()
		s.sent = append(s.sent, line)
		s.mu.Unlock()

		if s.onLine != nil {
			s.onLine(line, s)
		}
	}
}
