// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"strings"

	"github.com/invowk/cmdkit/pkg/command"
)

// Separator splits key segments.
const Separator = "/"

type (
	// Key is a slash-delimited command key. The empty key is the root group.
	Key string

	// Kind distinguishes executable commands from navigable groups.
	Kind int

	// Source is a filesystem location contributing commands, with an
	// optional key prefix.
	Source struct {
		Path string
		Root string
	}

	// Entry is one node of the tree.
	Entry struct {
		Key  Key
		Kind Kind
		// Path is the command file or group directory. Empty for in-process
		// and implicit entries.
		Path string
		// Source names the contributing source for diagnostics.
		Source string
		// InProcess is set for commands registered from Go code.
		InProcess bool
		// Implicit is set for groups created from a key prefix.
		Implicit    bool
		Description string
		// Definition is set for in-process commands; filesystem commands are
		// loaded lazily from Path.
		Definition *command.Definition
	}

	// SourceEntries is what one filesystem source contributed.
	SourceEntries struct {
		Source  Source
		Entries map[Key]Entry
	}
)

const (
	EntryCommand Kind = iota + 1
	EntryGroup
)

// InProcessSource labels entries registered from Go code.
const InProcessSource = "in-process registry"

func (k Kind) String() string {
	switch k {
	case EntryCommand:
		return "command"
	case EntryGroup:
		return "group"
	default:
		return "unknown"
	}
}

// NewKey joins segments into a key, dropping empty ones.
func NewKey(segments ...string) Key {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, Separator)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Key(strings.Join(parts, Separator))
}

func (k Key) String() string { return string(k) }

// Segments returns the key's path segments.
func (k Key) Segments() []string {
	if k == "" {
		return nil
	}
	return strings.Split(string(k), Separator)
}

// Parent returns the enclosing group key; the root's parent is the root.
func (k Key) Parent() Key {
	i := strings.LastIndex(string(k), Separator)
	if i < 0 {
		return ""
	}
	return k[:i]
}

// Name returns the last segment.
func (k Key) Name() string {
	return string(k[strings.LastIndex(string(k), Separator)+1:])
}

// Ancestors returns every proper prefix of k, outermost first, excluding the root.
func (k Key) Ancestors() []Key {
	segs := k.Segments()
	if len(segs) < 2 {
		return nil
	}
	out := make([]Key, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, Key(strings.Join(segs[:i], Separator)))
	}
	return out
}

// IsCommand reports whether the entry is executable.
func (e Entry) IsCommand() bool { return e.Kind == EntryCommand }

// Origin returns the most specific description of where the entry came from.
func (e Entry) Origin() string {
	if e.Path != "" {
		return e.Path
	}
	if e.Source != "" {
		return e.Source
	}
	if e.InProcess {
		return InProcessSource
	}
	return "implicit group"
}

func (s Source) String() string {
	if s.Root == "" {
		return s.Path
	}
	return s.Path + " (root " + s.Root + ")"
}
