// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package webform

import (
	"bufio"
	"strings"
	"sync"
	"time"
)

// Scrollback is a bounded, append-only log of status lines shown under the
// form. Once full, the oldest lines are dropped.
type Scrollback struct {
	mu    sync.Mutex
	max   int
	lines []string
	now   func() time.Time
}

// NewScrollback returns a Scrollback holding at most max lines.
func NewScrollback(max int) *Scrollback {
	if max <= 0 {
		max = 1
	}
	return &Scrollback{max: max, now: time.Now}
}

// Append adds every non-empty line of text, each stamped with the time.
func (s *Scrollback) Append(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Format("15:04:05")
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		s.lines = append(s.lines, "["+ts+"] "+line)
	}
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

// Lines returns a copy of the current lines, oldest first.
func (s *Scrollback) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}
