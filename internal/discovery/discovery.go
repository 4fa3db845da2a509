// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/internal/commandtree"
)

// CommandFileExt is the extension of command files.
const CommandFileExt = ".cue"

// Hooks reads command sources from a filesystem.
type Hooks struct {
	fs          afero.Fs
	log         *slog.Logger
	diagnostics []Diagnostic
}

// New returns hooks over fsys. A nil logger uses slog.Default.
func New(fsys afero.Fs, log *slog.Logger) *Hooks {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hooks{fs: fsys, log: log}
}

// Diagnostics returns the findings collected so far.
func (h *Hooks) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(h.diagnostics))
	copy(out, h.diagnostics)
	return out
}

// Discover resolves every source in order.
func (h *Hooks) Discover(sources []commandtree.Source) ([]commandtree.SourceEntries, error) {
	out := make([]commandtree.SourceEntries, 0, len(sources))
	for _, src := range sources {
		entries, err := h.ResolveCommandEntryPaths(src)
		if err != nil {
			return nil, err
		}
		out = append(out, commandtree.SourceEntries{Source: src, Entries: entries})
	}
	return out, nil
}

// ResolveCommandEntryPaths maps the keys of one source to entries. A missing
// source directory yields no entries and a warning diagnostic.
func (h *Hooks) ResolveCommandEntryPaths(src commandtree.Source) (map[commandtree.Key]commandtree.Entry, error) {
	entries := make(map[commandtree.Key]commandtree.Entry)
	root := filepath.Clean(src.Path)

	info, err := h.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.warn(CodeSourceMissing, "command source does not exist", root, nil)
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read command source %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("command source %s is not a directory", root)
	}

	if src.Root != "" {
		entries[commandtree.NewKey(src.Root)] = commandtree.Entry{Kind: commandtree.EntryGroup, Path: root}
	}

	err = afero.Walk(h.fs, root, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			h.warn(CodeEntrySkipped, "cannot read entry", path, walkErr)
			if fi != nil && fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		name := fi.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			h.log.Debug("skipping hidden entry", "path", path)
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		var entry commandtree.Entry
		switch {
		case fi.IsDir():
			entry = commandtree.Entry{Kind: commandtree.EntryGroup, Path: path}
		case strings.HasSuffix(name, CommandFileExt):
			rel = strings.TrimSuffix(rel, CommandFileExt)
			entry = commandtree.Entry{Kind: commandtree.EntryCommand, Path: path}
		default:
			return nil
		}

		key := commandtree.NewKey(src.Root, rel)
		if existing, ok := entries[key]; ok {
			return &commandtree.DuplicateKeyError{Key: key, First: existing.Path, Second: path}
		}
		entries[key] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *Hooks) warn(code, msg, path string, cause error) {
	h.diagnostics = append(h.diagnostics, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  msg,
		Path:     path,
		Cause:    cause,
	})
	if cause != nil {
		h.log.Warn(msg, "path", path, "error", cause)
	} else {
		h.log.Warn(msg, "path", path)
	}
}
