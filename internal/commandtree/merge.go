// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"fmt"
	"slices"

	"github.com/invowk/cmdkit/pkg/command"
)

// DefaultMaxDistance is the minimum edit distance a suggestion may have.
const DefaultMaxDistance = 3

// Tree is the merged, read-only command index.
type Tree struct {
	entries     map[Key]Entry
	maxDistance int
}

// Option configures a Tree.
type Option func(*Tree)

// WithMaxDistance sets the suggestion distance floor. Values below one keep
// the default.
func WithMaxDistance(d int) Option {
	return func(t *Tree) {
		if d > 0 {
			t.maxDistance = d
		}
	}
}

// Merge builds the tree. Filesystem sources merge in order; a command key
// defined by two of them is fatal, while groups with the same key merge.
// In-process entries merge last and shadow filesystem commands with a warning
// written to log. An in-process command may not take the key of a group or
// sit below another command.
func Merge(sources []SourceEntries, inProcess map[Key]Entry, log command.Log, opts ...Option) (*Tree, error) {
	t := &Tree{
		entries:     map[Key]Entry{"": {Key: "", Kind: EntryGroup, Implicit: true}},
		maxDistance: DefaultMaxDistance,
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, src := range sources {
		for _, key := range sortedKeys(src.Entries) {
			e := src.Entries[key]
			e.Key = key
			if e.Source == "" {
				e.Source = src.Source.String()
			}
			if err := t.addFilesystem(e); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range sortedKeys(inProcess) {
		e := inProcess[key]
		e.Key = key
		e.Kind = EntryCommand
		e.InProcess = true
		if e.Source == "" {
			e.Source = InProcessSource
		}
		if e.Definition == nil || e.Definition.New == nil {
			return nil, &MissingBuilderError{Key: key, Source: e.Source}
		}
		if e.Description == "" {
			e.Description = e.Definition.Description
		}
		existing, ok := t.entries[key]
		if ok && existing.Kind == EntryGroup {
			// Replacing a group would hide every command below it.
			return nil, &DuplicateKeyError{Key: key, First: existing.Origin(), Second: e.Source}
		}
		for _, anc := range key.Ancestors() {
			if cur, found := t.entries[anc]; found && cur.Kind == EntryCommand {
				return nil, &DuplicateKeyError{Key: anc, First: cur.Origin(), Second: e.Source}
			}
		}
		if ok && log != nil {
			log.Warn(fmt.Sprintf("in-process command %q shadows %s", key, existing.Origin()))
		}
		t.entries[key] = e
		t.addImplicitGroups(key)
	}

	return t, nil
}

func (t *Tree) addFilesystem(e Entry) error {
	existing, ok := t.entries[e.Key]
	switch {
	case !ok:
		t.entries[e.Key] = e
	case existing.Kind == EntryGroup && e.Kind == EntryGroup:
		if existing.Implicit {
			e.Implicit = false
			t.entries[e.Key] = e
		} else if existing.Description == "" && e.Description != "" {
			existing.Description = e.Description
			t.entries[e.Key] = existing
		}
	default:
		if existing.Implicit {
			// A command cannot take a key an earlier source uses as a group.
			return &DuplicateKeyError{Key: e.Key, First: existing.Source, Second: e.Origin()}
		}
		return &DuplicateKeyError{Key: e.Key, First: existing.Origin(), Second: e.Origin()}
	}

	if e.Kind == EntryCommand {
		for _, anc := range e.Key.Ancestors() {
			if cur, ok := t.entries[anc]; ok && cur.Kind == EntryCommand {
				return &DuplicateKeyError{Key: anc, First: cur.Origin(), Second: e.Origin()}
			}
		}
		t.addImplicitGroupsFrom(e.Key, e.Source)
	}
	return nil
}

func (t *Tree) addImplicitGroups(key Key) {
	t.addImplicitGroupsFrom(key, "")
}

func (t *Tree) addImplicitGroupsFrom(key Key, source string) {
	for _, anc := range key.Ancestors() {
		if _, ok := t.entries[anc]; ok {
			continue
		}
		t.entries[anc] = Entry{Key: anc, Kind: EntryGroup, Implicit: true, Source: source}
	}
}

// Len returns the number of entries, excluding the root group.
func (t *Tree) Len() int { return len(t.entries) - 1 }

// Get returns the entry for key.
func (t *Tree) Get(key Key) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns every key except the root, sorted.
func (t *Tree) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Entries returns every entry except the root, sorted by key.
func (t *Tree) Entries() []Entry {
	keys := t.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.entries[k])
	}
	return out
}

// Children returns the direct children of key, sorted.
func (t *Tree) Children(key Key) []Entry {
	var out []Entry
	for _, k := range t.Keys() {
		if k.Parent() == key && k != key {
			out = append(out, t.entries[k])
		}
	}
	return out
}

func sortedKeys(m map[Key]Entry) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
