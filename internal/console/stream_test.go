// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aibor/beriboot/internal/console"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStreamExpectMatch(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.EmitLn("Connecting to BERI UART")

	match, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("Connecting to BERI UART")},
		time.Second,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, match.Index)
	assert.Equal(t, "Connecting to BERI UART", match.Text)
}

func TestStreamExpectBeforeAndGroups(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.EmitLn("some noise")
	script.EmitLn("inet 10.0.2.15 netmask 0xffffff00")

	match, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Regex(`inet (.+) netmask `)},
		time.Second,
	)
	require.NoError(t, err)
	require.Len(t, match.Groups, 2)
	assert.Equal(t, "10.0.2.15", match.Groups[1])
	assert.Contains(t, match.Before, "some noise")
}

func TestStreamExpectScrubsCarriageReturns(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.Emit("100% of\r\nimage loaded\r\n")

	_, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("100% of\nimage loaded")},
		time.Second,
	)
	require.NoError(t, err)
}

func TestStreamExpectTimeout(t *testing.T) {
	stream, _ := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	timeout := 300 * time.Millisecond
	start := time.Now()

	_, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("never")},
		timeout,
	)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, console.ErrExpectTimeout)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+2*console.DefaultPollInterval)
}

func TestStreamExpectClosed(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.CloseOutput()

	_, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("never")},
		time.Second,
	)
	require.ErrorIs(t, err, console.ErrStreamClosed)
}

func TestStreamExpectMatchesOutputRacingClose(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.EmitLn("final words")
	script.CloseOutput()

	match, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("final words")},
		time.Second,
	)
	require.NoError(t, err)
	assert.Equal(t, "final words", match.Text)
}

func TestStreamSendLine(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	require.NoError(t, stream.SendLine("ifconfig atse0"))

	assert.Eventually(t, func() bool {
		lines := script.Sent()
		return len(lines) == 1 && lines[0] == "ifconfig atse0"
	}, time.Second, 10*time.Millisecond)
}

func TestStreamSinkReceivesOutput(t *testing.T) {
	var sink strings.Builder

	stream, script := console.NewScriptedStream(&sink, nil)
	defer stream.Close()

	script.EmitLn("boot message")

	_, err := stream.Expect(
		t.Context(),
		[]console.Pattern{console.Literal("boot message")},
		time.Second,
	)
	require.NoError(t, err)
	assert.Contains(t, sink.String(), "boot message")
}

func TestStreamWaitClosed(t *testing.T) {
	stream, script := console.NewScriptedStream(nil, nil)
	defer stream.Close()

	script.CloseOutput()

	require.NoError(t, stream.WaitClosed(t.Context(), time.Second))
}
