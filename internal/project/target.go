package project

import "context"

// WriteTarget is a persistent destination for project archives. A target is
// exclusively owned by one ProjectSession; losing write access clears it so
// a stale target is never retried silently.
type WriteTarget interface {
	// Name returns the target's display name (usually the archive filename).
	Name() string

	// WriteAll replaces the target's contents with data. Implementations
	// must be atomic: a failed write leaves the previous contents intact.
	// A revoked or stale target returns an error wrapping ErrWriteTargetLost.
	WriteAll(ctx context.Context, data []byte) error
}

// TargetProvider resolves write targets for the host environment.
// A nil target with a nil error means the host declined to grant one
// (the session then falls back to one-shot export and stays in
// StatusNoHandle).
type TargetProvider interface {
	RequestTarget(ctx context.Context, suggestedName string) (WriteTarget, error)
}
