// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"strings"

	"github.com/agext/levenshtein"
)

type (
	// Match is the classification of a requested key. It is one of
	// CommandMatch, GroupMatch or UnknownMatch.
	Match interface {
		match()
	}

	// CommandMatch selects an executable command.
	CommandMatch struct {
		Entry Entry
	}

	// GroupMatch asks for a listing: the key is a group, the root, or a
	// command with a help flag.
	GroupMatch struct {
		Entry    Entry
		Children []Entry
	}

	// UnknownMatch names a key with no entry. Suggestion is empty when no
	// known key is close enough.
	UnknownMatch struct {
		Key        Key
		Suggestion Key
	}
)

func (CommandMatch) match() {}
func (GroupMatch) match()   {}
func (UnknownMatch) match() {}

// Match classifies key. It is pure and total over the tree.
func (t *Tree) Match(key Key, helpRequested bool) Match {
	e, ok := t.entries[key]
	if !ok {
		return UnknownMatch{Key: key, Suggestion: t.Suggest(key)}
	}
	if e.Kind == EntryGroup || helpRequested {
		return GroupMatch{Entry: e, Children: t.Children(key)}
	}
	return CommandMatch{Entry: e}
}

// Suggest returns the known key closest to key by edit distance. Candidates
// must be within max(maxDistance, len(key)/3). Ties go to the shorter key,
// then to the lexicographically first.
func (t *Tree) Suggest(key Key) Key {
	limit := max(t.maxDistance, len(key)/3)

	var (
		best     Key
		bestDist = -1
	)
	for _, k := range t.Keys() {
		d := levenshtein.Distance(string(key), string(k), nil)
		if d > limit {
			continue
		}
		if bestDist < 0 || d < bestDist ||
			(d == bestDist && (len(k) < len(best) || (len(k) == len(best) && k < best))) {
			best, bestDist = k, d
		}
	}
	return best
}

// SplitKey finds the command key at the start of tokens and returns it with
// the remaining tokens. Leading tokens that do not start with "-" are joined
// while they keep naming a group; a token containing "/" is a full key. A
// group followed by a token that names nothing yields that unknown key.
func (t *Tree) SplitKey(tokens []string) (Key, []string) {
	if len(tokens) == 0 || isFlag(tokens[0]) {
		return "", tokens
	}
	if strings.Contains(tokens[0], Separator) {
		return NewKey(tokens[0]), tokens[1:]
	}

	var key Key
	for i, tok := range tokens {
		if isFlag(tok) {
			return key, tokens[i:]
		}
		next := NewKey(string(key), tok)
		e, ok := t.entries[next]
		if !ok {
			return next, tokens[i+1:]
		}
		key = next
		if e.Kind == EntryCommand {
			return key, tokens[i+1:]
		}
	}
	return key, nil
}

func isFlag(tok string) bool {
	return strings.HasPrefix(tok, "-") && tok != "-"
}
