// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// DefaultPollInterval is the granularity [Stream.Expect] polls the output
// buffer with.
const DefaultPollInterval = 100 * time.Millisecond

const readChunkSize = 4096

// Stream wraps an interactive process with a line-decoded output buffer,
// blocking pattern matching and line-oriented input.
//
// All output is teed to the transcript sink. A Stream must be closed
// explicitly; this releases the process handle.
type Stream struct {
	cmd *exec.Cmd
	in  io.Writer
	rwc io.Closer

	poll time.Duration

	mu      sync.Mutex
	buf     []byte
	readErr error

	done chan struct{}

	waitOnce sync.Once
	waitErr  error

	log *slog.Logger
}

// NewStream adopts an existing bidirectional stream, e.g. a test pipe or the
// stdio of an already running process.
//
// Output read from rwc is scrubbed of carriage returns and teed to sink. The
// sink may be nil.
func NewStream(rwc io.ReadWriteCloser, sink io.Writer, log *slog.Logger) *Stream {
	return newStream(nil, rwc, rwc, rwc, sink, log)
}

func newStream(
	cmd *exec.Cmd,
	out io.Reader,
	in io.Writer,
	closer io.Closer,
	sink io.Writer,
	log *slog.Logger,
) *Stream {
	if log == nil {
		log = slog.Default()
	}

	s := &Stream{
		cmd:  cmd,
		in:   in,
		rwc:  closer,
		poll: DefaultPollInterval,
		done: make(chan struct{}),
		log:  log,
	}

	go s.read(out, sink)

	return s
}

// read drains the output side into the buffer until the stream closes.
// Carriage returns are scrubbed so patterns only deal with "\n" line breaks.
func (s *Stream) read(out io.Reader, sink io.Writer) {
	defer close(s.done)

	chunk := make([]byte, readChunkSize)

	for {
		n, err := out.Read(chunk)

		if n > 0 {
			data := bytes.ReplaceAll(chunk[:n], []byte("\r"), nil)

			// Tee before the data becomes matchable, so a caller observing
			// a match can rely on the transcript being written.
			if sink != nil {
				_, _ = sink.Write(data)
			}

			s.mu.Lock()
			s.buf = append(s.buf, data...)
			s.mu.Unlock()
		}

		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()

			return
		}
	}
}

// Expect blocks until one of the patterns matches the buffered output, the
// timeout elapses, the stream closes or the context is canceled.
//
// On success the buffer is consumed up to and including the match. It fails
// with [ErrExpectTimeout] or [ErrStreamClosed]; context cancellation is
// reported as [ErrStreamClosed] since the process is being torn down.
func (s *Stream) Expect(
	ctx context.Context,
	patterns []Pattern,
	timeout time.Duration,
) (Match, error) {
	deadline := time.Now().Add(timeout)

	for {
		s.mu.Lock()
		match, end, found := matchEarliest(s.buf, patterns)

		if found {
			s.buf = s.buf[end:]
			s.mu.Unlock()

			s.log.Debug("Pattern matched",
				slog.String("pattern", patterns[match.Index].String()))

			return match, nil
		}

		closed := s.readErr != nil
		s.mu.Unlock()

		if closed {
			return Match{}, ErrStreamClosed
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Match{}, ErrExpectTimeout
		}

		wait := s.poll
		if remaining < wait {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Match{}, errors.Join(ErrStreamClosed, ctx.Err())
		case <-s.done:
			timer.Stop()
			// Loop once more so output that raced with the close is still
			// matched.
		case <-timer.C:
		}
	}
}

// Input returns the raw input writer of the process, for interactive
// hand-off to a terminal user.
func (s *Stream) Input() io.Writer {
	return s.in
}

// SendLine writes text plus a newline to the process input. It does not wait
// for any reaction.
func (s *Stream) SendLine(text string) error {
	s.log.Debug("Sending line", slog.String("line", text))

	_, err := s.in.Write([]byte(text + "\n"))
	if err != nil {
		return errors.Join(ErrStreamClosed, err)
	}

	return nil
}

// WaitClosed blocks until the stream reaches EOF or the timeout elapses.
//
// Loader style commands print their output and exit; callers use this to
// hand control back only once the process is gone.
func (s *Stream) WaitClosed(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return s.wait()
	case <-timer.C:
		return ErrExpectTimeout
	case <-ctx.Done():
		return errors.Join(ErrStreamClosed, ctx.Err())
	}
}

// Close terminates the process if it is still alive and releases the handle.
func (s *Stream) Close() error {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}

	err := s.rwc.Close()

	<-s.done

	_ = s.wait()

	return err
}

// wait reaps the child exactly once.
func (s *Stream) wait() error {
	s.waitOnce.Do(func() {
		if s.cmd != nil {
			s.waitErr = s.cmd.Wait()
		}
	})

	return s.waitErr
}
