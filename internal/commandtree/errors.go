// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is matched by every *DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate command key")
	// ErrMissingBuilder is matched by every *MissingBuilderError.
	ErrMissingBuilder = errors.New("command has no builder")
)

type (
	// DuplicateKeyError reports a key claimed twice: by two filesystem sources,
	// or by an in-process command and a group.
	DuplicateKeyError struct {
		Key    Key
		First  string
		Second string
	}

	// MissingBuilderError reports a command entry that cannot be constructed.
	MissingBuilderError struct {
		Key    Key
		Source string
	}
)

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("Duplicate command key %q defined by both %s and %s", e.Key, e.First, e.Second)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

func (e *MissingBuilderError) Error() string {
	return fmt.Sprintf("command %q from %s has no builder", e.Key, e.Source)
}

func (e *MissingBuilderError) Is(target error) bool { return target == ErrMissingBuilder }
