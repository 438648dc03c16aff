package database

import "errors"

var (
	// ErrNotFound means no record exists for the transaction code.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyClaimed means a reward account already exists for the code.
	// Claiming is one-time per transaction.
	ErrAlreadyClaimed = errors.New("points already claimed")

	// ErrInsufficientPoints means the account balance does not cover the
	// artifact cost.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrAlreadyUnlocked means the artifact is already in the account's
	// unlocked set.
	ErrAlreadyUnlocked = errors.New("artifact already unlocked")
)
