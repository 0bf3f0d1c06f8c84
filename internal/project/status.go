package project

import (
	"fmt"
	"time"
)

// AutoSaveStatus is the session's save state machine position.
//
//	no-handle -> idle -> saving -> {saved | error}
//
// saved, error, and idle can all transition back to saving; any state can
// regress to no-handle when the write target becomes invalid.
type AutoSaveStatus string

const (
	StatusNoHandle AutoSaveStatus = "no-handle"
	StatusIdle     AutoSaveStatus = "idle"
	StatusSaving   AutoSaveStatus = "saving"
	StatusSaved    AutoSaveStatus = "saved"
	StatusError    AutoSaveStatus = "error"
)

// StatusText renders a user-facing label for the status, relative to now.
func StatusText(status AutoSaveStatus, lastSaved time.Time, now time.Time) string {
	switch status {
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		if lastSaved.IsZero() {
			return "Saved"
		}
		return "Saved " + formatTimeAgo(lastSaved, now)
	case StatusError:
		return "Save failed"
	case StatusIdle:
		return "Auto-save on"
	default:
		return "Not saved"
	}
}

func formatTimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 60 {
		return "just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	return fmt.Sprintf("%dh ago", minutes/60)
}
