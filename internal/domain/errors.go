package domain

import (
	"errors"
	"fmt"
)

type ValidationReason string

const (
	ReasonMissing ValidationReason = "missing"
	ReasonUnknown ValidationReason = "unknown"
	ReasonInvalid ValidationReason = "invalid"
)

// ValidationError names the request field that was rejected. Nothing is
// mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason ValidationReason
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("missing %s", e.Field)
	}
	return fmt.Sprintf("%s %s %q", e.Reason, e.Field, e.Value)
}

// StorageError wraps a failure of the durable store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ErrConsistencyViolation means a player was found in more than one tier of a
// single game mode. It indicates a bug or an out-of-process edit.
var ErrConsistencyViolation = errors.New("player held more than one tier in a gamemode")

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
