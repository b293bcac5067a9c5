package repository

import "errors"

var (
	// ErrNotFound: the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a unique constraint was violated (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrLimitReached: the daily reset-attempt cap for the user is exhausted.
	ErrLimitReached = errors.New("limit reached")

	// ErrNotRedeemable: the attempt is no longer pending, already used or expired.
	ErrNotRedeemable = errors.New("attempt not redeemable")

	// ErrNoDatabase: the configured driver has no database behind it.
	ErrNoDatabase = errors.New("no database configured")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
