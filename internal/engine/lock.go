package engine

import (
	"context"
	"errors"

	"github.com/danieljhkim/sphere/internal/locks"
	"github.com/danieljhkim/sphere/internal/lockstore"
)

// Lock acquires a lock on req.File for the requesting identity.
func (e *Engine) Lock(ctx context.Context, req *LockRequest) (*LockResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	file, err := resolveResource(e.fs, req.File, req.CWD, s.paths.Root)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := s.locks.Acquire(locks.AcquireRequest{
		File: file,
		Owner: lockstore.Owner{
			Project:  s.project(req.Identity.Project, req.CWD),
			Agent:    req.Identity.Agent,
			Protocol: req.Identity.Protocol,
		},
		Reason: req.Reason,
	})
	if err != nil {
		return nil, err
	}

	return &LockResult{Lock: l}, nil
}

// Unlock releases the lock on req.File. The result names the holder the
// lock had when it was read, if it could be read.
func (e *Engine) Unlock(ctx context.Context, req *UnlockRequest) (*UnlockResult, error) {
	s, err := e.open(ctx, req.CWD)
	if err != nil {
		return nil, err
	}

	file, err := resolveResource(e.fs, req.File, req.CWD, s.paths.Root)
	if err != nil {
		return nil, err
	}

	result := &UnlockResult{File: file}

	held, err := s.locks.Get(file)
	switch {
	case err == nil:
		result.HeldBy = &held.LockedBy
	case errors.Is(err, lockstore.ErrNotFound), errors.Is(err, lockstore.ErrParse):
		// Unchecked release still removes an unreadable record.
	default:
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	released, err := s.locks.Release(file, req.Owner)
	if err != nil {
		return nil, err
	}
	result.Released = released
	if !released {
		result.HeldBy = nil
	}

	return result, nil
}
