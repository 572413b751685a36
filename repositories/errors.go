package repositories

import (
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a lost race on a unique constraint. The caller's
	// transaction has been rolled back and may be retried.
	ErrConflict = errors.New("unique constraint conflict")

	ErrSelfFollow       = errors.New("a profile cannot follow itself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrPolicyMismatch   = errors.New("follow routing does not match target privacy")
)
