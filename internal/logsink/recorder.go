// SPDX-License-Identifier: MPL-2.0

package logsink

import (
	"strings"
	"sync"

	"github.com/invowk/cmdkit/pkg/command"
)

// Level identifies one of the four sink levels.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Entry is one recorded line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a command.Log that keeps every line in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ command.Log = (*Recorder)(nil)

func (r *Recorder) Info(v ...any)    { r.add(LevelInfo, v) }
func (r *Recorder) Warn(v ...any)    { r.add(LevelWarn, v) }
func (r *Recorder) Error(v ...any)   { r.add(LevelError, v) }
func (r *Recorder) Success(v ...any) { r.add(LevelSuccess, v) }

// Entries returns a copy of the recorded lines.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the messages recorded at level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any line at level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, m := range r.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) add(level Level, v []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: join(v)})
}
