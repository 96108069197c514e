package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStorage is matched by errors returned from Add when the
	// storage name is already registered.
	ErrDuplicateStorage = errors.New("storage: already exists")
	// ErrUnknownStorage is matched by lookups against unregistered names.
	ErrUnknownStorage = errors.New("storage: does not exist")
	// ErrNoThemeLocator is returned by RegisterThemeOverride when the registry
	// has no way to discover the active theme directory.
	ErrNoThemeLocator = errors.New("storage: theme locator is required")
)

// DuplicateStorageError reports an Add call for a name that is taken.
type DuplicateStorageError struct {
	Name string
}

func (e *DuplicateStorageError) Error() string {
	return fmt.Sprintf("storage: storage %q already exists", e.Name)
}

// Is allows errors.Is(err, ErrDuplicateStorage).
func (e *DuplicateStorageError) Is(target error) bool {
	return target == ErrDuplicateStorage
}

// UnknownStorageError reports a lookup for a name that was never registered.
type UnknownStorageError struct {
	Name string
}

func (e *UnknownStorageError) Error() string {
	return fmt.Sprintf("storage: storage %q does not exist", e.Name)
}

// Is allows errors.Is(err, ErrUnknownStorage).
func (e *UnknownStorageError) Is(target error) bool {
	return target == ErrUnknownStorage
}
