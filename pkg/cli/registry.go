// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/issue"
	"github.com/invowk/cmdkit/pkg/command"
)

// ErrRegistrySealed is returned by Register once the runtime has resolved its
// first command.
var ErrRegistrySealed = errors.New("command registry is sealed")

// Registry holds commands registered from Go code. It is sealed on the first
// resolution pass of its runtime.
type Registry struct {
	mu      sync.Mutex
	sealed  bool
	entries map[commandtree.Key]commandtree.Entry
}

// NewRegistry returns an empty, open registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[commandtree.Key]commandtree.Entry)}
}

// Register adds def under key. A later registration for the same key
// replaces the earlier one.
func (r *Registry) Register(key string, def command.Definition) error {
	k := commandtree.NewKey(key)
	if k == "" {
		return fmt.Errorf("register command: empty key")
	}
	if def.New == nil {
		return &commandtree.MissingBuilderError{Key: k, Source: commandtree.InProcessSource}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return issue.NewErrorContext().
			WithOperation("register command").
			WithResource(key).
			WithIssue(issue.RegistrySealedId).
			WithSuggestion("Register commands before calling Runtime.Run").
			Wrap(ErrRegistrySealed).
			BuildError()
	}
	r.entries[k] = commandtree.Entry{
		Kind:        commandtree.EntryCommand,
		Description: def.Description,
		Definition:  &def,
	}
	return nil
}

// Sealed reports whether Register is closed.
func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// seal closes the registry and returns its entries.
func (r *Registry) seal() map[commandtree.Key]commandtree.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return maps.Clone(r.entries)
}
