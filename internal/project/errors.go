package project

import "errors"

// Error taxonomy for archive loading and saving. Callers classify failures
// with errors.Is; everything else is an ordinary wrapped error.
var (
	// ErrCorruptArchive means a mandatory archive entry (manifest or
	// settings) is missing or undecodable. Loads abort with no partial
	// state applied.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrUnsupportedVersion means the archive's format version is absent
	// or not parseable.
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// ErrWriteTargetLost means the persistent write target was revoked or
	// went stale. The in-flight save aborts and the session regresses to
	// StatusNoHandle so a new target must be resolved.
	ErrWriteTargetLost = errors.New("write target lost")
)
