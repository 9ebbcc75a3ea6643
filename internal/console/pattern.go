// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bytes"
	"regexp"
)

// Pattern matches console output either literally or as a regular
// expression. The zero value matches nothing.
type Pattern struct {
	literal string
	regex   *regexp.Regexp
}

// Literal returns a [Pattern] that matches the exact string s.
func Literal(s string) Pattern {
	return Pattern{literal: s}
}

// Regex returns a [Pattern] that matches the regular expression expr.
//
// It panics if the expression does not compile, so it is meant for
// package-level pattern constants.
func Regex(expr string) Pattern {
	return Pattern{regex: regexp.MustCompile(expr)}
}

// String implements [fmt.Stringer].
func (p Pattern) String() string {
	if p.regex != nil {
		return p.regex.String()
	}

	return p.literal
}

// find returns the position of the leftmost match of p in buf together with
// any regex submatches.
func (p Pattern) find(buf []byte) (start, end int, groups []string, ok bool) {
	switch {
	case p.regex != nil:
		loc := p.regex.FindSubmatchIndex(buf)
		if loc == nil {
			return 0, 0, nil, false
		}

		groups = make([]string, 0, len(loc)/2)
		for i := 0; i < len(loc); i += 2 {
			if loc[i] < 0 {
				groups = append(groups, "")
				continue
			}

			groups = append(groups, string(buf[loc[i]:loc[i+1]]))
		}

		return loc[0], loc[1], groups, true
	case p.literal != "":
		idx := bytes.Index(buf, []byte(p.literal))
		if idx < 0 {
			return 0, 0, nil, false
		}

		return idx, idx + len(p.literal), nil, true
	default:
		return 0, 0, nil, false
	}
}

// Match is the result of a successful [Stream.Expect].
type Match struct {
	// Index of the matched pattern in the expect list.
	Index int
	// Text is the matched portion of the output.
	Text string
	// Before is the buffered output preceding the match.
	Before string
	// Groups holds regex submatches, starting with the full match.
	Groups []string

	matchStart int
}

// matchEarliest finds the pattern with the leftmost match in buf. Ties are
// broken by pattern order.
func matchEarliest(buf []byte, patterns []Pattern) (Match, int, bool) {
	best := -1

	var match Match

	var bestEnd int

	for idx, pattern := range patterns {
		start, end, groups, ok := pattern.find(buf)
		if !ok {
			continue
		}

		if best != -1 && start >= match.matchStart {
			continue
		}

		match = Match{
			Index:      idx,
			Text:       string(buf[start:end]),
			Before:     string(buf[:start]),
			Groups:     groups,
			matchStart: start,
		}
		best = idx
		bestEnd = end
	}

	return match, bestEnd, best != -1
}
