// Copyright 2026 The Govisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syslog

import (
	"fmt"
	"time"
)

// Format identifies which of the two envelopes a datagram used.
type Format int

const (
	// Legacy is the BSD format: "<PRI>Mmm dd hh:mm:ss message".
	Legacy Format = iota
	// Structured is the versioned format: "<PRI>1 TIMESTAMP HOST message".
	Structured
)

func (f Format) String() string {
	switch f {
	case Legacy:
		return "legacy"
	case Structured:
		return "structured"
	}
	return "unknown"
}

// maxPriority bounds the priority value; anything bigger has an unknown
// facility anyway.
const maxPriority = 1 << 16

// Message is a parsed datagram.
type Message struct {
	Format    Format
	Priority  int
	Facility  string
	Severity  string
	Timestamp string
	Text      string
}

// String renders the message as one diagnostic line.
func (m *Message) String() string {
	return m.Timestamp + " " + m.Facility + "." + m.Severity + ": " + m.Text
}

// ParseError reports where, and why, parsing stopped.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized format at offset %d: %s",
		e.Offset, e.Reason)
}

type scanner struct {
	b   []byte
	off int
}

func (s *scanner) fail(reason string) error {
	return &ParseError{Offset: s.off, Reason: reason}
}

func (s *scanner) done() bool {
	return s.off >= len(s.b)
}

func (s *scanner) peek() byte {
	return s.b[s.off]
}

// expect consumes c, which must be next.
func (s *scanner) expect(c byte, what string) error {
	if s.done() || s.peek() != c {
		return s.fail("expected " + what)
	}
	s.off++
	return nil
}

// digits consumes between min and max decimal digits and returns their
// value.  It does not check ranges; callers pass odd values through.
func (s *scanner) digits(min, max int, what string) (int, error) {
	n, v := 0, 0
	for n < max && !s.done() && s.peek() >= '0' && s.peek() <= '9' {
		if v < maxPriority {
			v = v*10 + int(s.peek()-'0')
		}
		s.off++
		n++
	}
	if n < min {
		return 0, s.fail("expected " + what)
	}
	return v, nil
}

// token consumes up to, not including, the next space, which must exist.
func (s *scanner) token(what string) ([]byte, error) {
	start := s.off
	for !s.done() && s.peek() != ' ' {
		s.off++
	}
	if s.off == start || s.done() {
		return nil, s.fail("expected " + what)
	}
	return s.b[start:s.off], nil
}

// field returns the next token if a space follows it, without
// consuming anything.  It returns nil for an empty or final token.
func (s *scanner) field() []byte {
	for i := s.off; i < len(s.b); i++ {
		if s.b[i] == ' ' {
			return s.b[s.off:i]
		}
	}
	return nil
}

// Parse parses one datagram.  The legacy envelope carries no year, so
// it is taken from now.
func Parse(b []byte, now time.Time) (*Message, error) {
	s := &scanner{b: b}
	if len(b) == 0 {
		return nil, s.fail("empty datagram")
	}
	if e := s.expect('<', "'<'"); e != nil {
		return nil, e
	}
	pri, e := s.digits(1, len(b), "priority")
	if e != nil {
		return nil, e
	}
	if e := s.expect('>', "'>'"); e != nil {
		return nil, e
	}
	m := &Message{
		Priority: pri,
		Facility: Facility(pri >> 3),
		Severity: Severity(pri & 7),
	}
	if s.done() {
		return nil, s.fail("missing envelope")
	}

	if s.peek() == '1' {
		m.Format = Structured
		e = s.structured(m)
	} else {
		m.Format = Legacy
		e = s.legacy(m, now)
	}
	if e != nil {
		return nil, e
	}
	m.Text = string(s.b[s.off:])
	return m, nil
}

// structured handles "1 TIMESTAMP HOST ", keeping the timestamp exactly
// as sent.  Everything after the host, app-name and structured data
// included, is left for the message.
func (s *scanner) structured(m *Message) error {
	s.off++
	if e := s.expect(' ', "space after version"); e != nil {
		return e
	}
	ts, e := s.token("timestamp")
	if e != nil {
		return e
	}
	m.Timestamp = string(ts)
	s.off++
	if _, e = s.token("hostname"); e != nil {
		return e
	}
	s.off++
	return nil
}

// legacy handles "Mmm dd hh:mm:ss HOST TAG: ".  The fractional seconds
// and zone are not on the wire and are rendered as placeholders, not
// guessed.
func (s *scanner) legacy(m *Message, now time.Time) error {
	if len(s.b)-s.off < 3 {
		return s.fail("expected month")
	}
	mon := month(s.b[s.off : s.off+3])
	if mon == 0 {
		return s.fail("expected month")
	}
	s.off += 3
	if e := s.expect(' ', "space after month"); e != nil {
		return e
	}
	day, e := s.digits(1, 2, "day")
	if e != nil {
		return e
	}
	if e = s.expect(' ', "space after day"); e != nil {
		return e
	}
	var hms [3]int
	for i, what := range []string{"hour", "minute", "second"} {
		if i > 0 {
			if e = s.expect(':', "':' before "+what); e != nil {
				return e
			}
		}
		if hms[i], e = s.digits(2, 2, what); e != nil {
			return e
		}
	}
	if e = s.expect(' ', "space after time"); e != nil {
		return e
	}
	// Then the host, when there is more after it, and a "tag:" or
	// "tag[pid]:" token.
	if host := s.field(); len(host) > 0 {
		s.off += len(host) + 1
	}
	if tag := s.field(); len(tag) > 0 && tag[len(tag)-1] == ':' {
		s.off += len(tag) + 1
	}
	m.Timestamp = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.??????+??:??",
		now.Year(), mon, day, hms[0], hms[1], hms[2])
	return nil
}
