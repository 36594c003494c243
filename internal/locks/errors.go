package locks

import (
	"errors"

	"github.com/danieljhkim/sphere/internal/lockstore"
)

var (
	// ErrLockExists indicates the resource is already locked.
	ErrLockExists = lockstore.ErrLockExists

	// ErrParse indicates a lock record could not be decoded.
	ErrParse = lockstore.ErrParse

	// ErrNotOwner indicates an ownership-checked release by someone who
	// does not hold the lock. The lock remains in place.
	ErrNotOwner = errors.New("not the lock owner")

	// ErrInvalidRequest indicates missing or invalid acquire arguments.
	ErrInvalidRequest = errors.New("invalid lock request")
)
