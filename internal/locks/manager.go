// Package locks implements the advisory locking protocol on top of the
// lock store: acquire, ownership-checked release, and enumeration.
//
// A resource is either unlocked or locked. Acquire moves it to locked in a
// single exclusive create, so no partially acquired lock is observable.
package locks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/sphere/internal/clock"
	"github.com/danieljhkim/sphere/internal/lockstore"
	"github.com/danieljhkim/sphere/internal/logging"
)

// Lock and Owner are re-exported for callers that only need the manager.
type (
	Lock  = lockstore.Lock
	Owner = lockstore.Owner
)

// AcquireRequest describes a lock to take.
type AcquireRequest struct {
	File   string
	Owner  Owner
	Reason string
}

// Manager coordinates lock acquisition and release.
type Manager struct {
	store  lockstore.Store
	clock  clock.Clock
	logger *logging.Logger
}

// NewManager creates a Manager over store.
func NewManager(store lockstore.Store, clk clock.Clock, logger *logging.Logger) *Manager {
	if clk == nil {
		clk = &clock.RealClock{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		store:  store,
		clock:  clk,
		logger: logger.WithComponent("locks"),
	}
}

// Acquire locks req.File for req.Owner. It fails with ErrLockExists when
// any owner, including req.Owner, already holds the file.
func (m *Manager) Acquire(req AcquireRequest) (*Lock, error) {
	if err := validateAcquire(req); err != nil {
		return nil, err
	}

	l := &Lock{
		File:     lockstore.Canonical(req.File),
		LockedBy: req.Owner,
		Since:    m.clock.Now(),
		Reason:   req.Reason,
	}

	if err := m.store.Create(l); err != nil {
		if errors.Is(err, ErrLockExists) {
			m.logger.Debug("lock held", "file", l.File, "requested_by", req.Owner.String())
		}
		return nil, err
	}

	m.logger.Info("lock acquired", "file", l.File, "owner", l.LockedBy.String(), "protocol", l.LockedBy.Protocol)
	return l, nil
}

func validateAcquire(req AcquireRequest) error {
	var missing []string
	if strings.TrimSpace(req.File) == "" {
		missing = append(missing, "file")
	}
	if strings.TrimSpace(req.Owner.Project) == "" {
		missing = append(missing, "project")
	}
	if strings.TrimSpace(req.Owner.Agent) == "" {
		missing = append(missing, "agent")
	}
	if strings.TrimSpace(req.Owner.Protocol) == "" {
		missing = append(missing, "protocol")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// Release removes the lock on file. When owner is non-empty it must match
// the holder's agent or project, otherwise ErrNotOwner is returned and the
// lock is left in place. Releasing an unlocked file returns false.
func (m *Manager) Release(file, owner string) (bool, error) {
	if strings.TrimSpace(file) == "" {
		return false, fmt.Errorf("%w: missing file", ErrInvalidRequest)
	}
	file = lockstore.Canonical(file)

	if owner != "" {
		held, err := m.store.Get(file)
		if err != nil {
			if errors.Is(err, lockstore.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if !held.LockedBy.Matches(owner) {
			return false, fmt.Errorf("%w: %q is locked by %s, not %q", ErrNotOwner, file, held.LockedBy.String(), owner)
		}
	}

	removed, err := m.store.Remove(file)
	if err != nil {
		return false, err
	}
	if removed {
		m.logger.Info("lock released", "file", file, "owner", owner)
	}
	return removed, nil
}

// Get returns the lock on file, or lockstore.ErrNotFound.
func (m *Manager) Get(file string) (*Lock, error) {
	return m.store.Get(lockstore.Canonical(file))
}

// ListActive returns every well-formed lock, sorted by file. Corrupt
// records are skipped.
func (m *Manager) ListActive() ([]Lock, error) {
	result, err := m.List()
	if err != nil {
		return nil, err
	}
	return result.Locks, nil
}

// List returns active locks together with the records that were skipped.
func (m *Manager) List() (*lockstore.ListResult, error) {
	return m.store.List()
}
