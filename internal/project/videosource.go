package project

import (
	"fmt"
	"math"
)

// VideoSourceReference describes the external video a reference archive was
// built from. It is used purely for reconnection validation, never for
// playback.
type VideoSourceReference struct {
	Filename           string  `json:"filename"`
	FileSizeBytes      int64   `json:"fileSize"`
	DurationSeconds    float64 `json:"duration"`
	MimeType           string  `json:"mimeType,omitempty"`
	ExpectedFrameCount int     `json:"expectedFrameCount,omitempty"`
	ProjectFPS         float64 `json:"projectFps,omitempty"`
}

// CandidateVideo is a file offered by the user to reconnect a reference
// archive. Duration comes from the host's video decoder.
type CandidateVideo struct {
	Filename        string
	FileSizeBytes   int64
	DurationSeconds float64
}

// Severity classifies a validation difference. Warnings may be accepted by
// the user; errors must block silent auto-reconnect.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Difference is one mismatch between a candidate video and the stored
// reference.
type Difference struct {
	Field    string
	Expected string
	Actual   string
	Severity Severity
}

// ValidationResult is the outcome of comparing a candidate against the
// stored reference. IsExactMatch is true iff no differences were recorded,
// warnings included.
type ValidationResult struct {
	IsExactMatch bool
	Differences  []Difference
}

// HasErrors reports whether any difference carries error severity.
func (r ValidationResult) HasErrors() bool {
	for _, d := range r.Differences {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// durationTolerance is how far, in seconds, a candidate's duration may
// drift from the stored reference before the mismatch is an error.
const durationTolerance = 0.5

// frameCountTolerance is the allowed relative drift between the derived and
// expected frame counts.
const frameCountTolerance = 0.05

// ValidateVideoSource checks a candidate file against a stored reference.
// Each rule is checked independently and all differences are accumulated;
// nothing short-circuits. Callers use IsExactMatch to decide silent
// auto-reconnect versus a confirmation dialog.
func ValidateVideoSource(candidate CandidateVideo, expected VideoSourceReference) ValidationResult {
	var diffs []Difference

	if candidate.Filename != expected.Filename {
		diffs = append(diffs, Difference{
			Field:    "filename",
			Expected: expected.Filename,
			Actual:   candidate.Filename,
			Severity: SeverityWarning,
		})
	}

	if expected.FileSizeBytes > 0 && candidate.FileSizeBytes != expected.FileSizeBytes {
		diffs = append(diffs, Difference{
			Field:    "fileSize",
			Expected: fmt.Sprintf("%d", expected.FileSizeBytes),
			Actual:   fmt.Sprintf("%d", candidate.FileSizeBytes),
			Severity: SeverityWarning,
		})
	}

	if expected.DurationSeconds > 0 && math.Abs(candidate.DurationSeconds-expected.DurationSeconds) > durationTolerance {
		diffs = append(diffs, Difference{
			Field:    "duration",
			Expected: fmt.Sprintf("%.2fs", expected.DurationSeconds),
			Actual:   fmt.Sprintf("%.2fs", candidate.DurationSeconds),
			Severity: SeverityError,
		})
	}

	if expected.ExpectedFrameCount > 0 && expected.ProjectFPS > 0 {
		derived := int(math.Floor(candidate.DurationSeconds * expected.ProjectFPS))
		drift := math.Abs(float64(derived-expected.ExpectedFrameCount)) / float64(expected.ExpectedFrameCount)
		if drift > frameCountTolerance {
			diffs = append(diffs, Difference{
				Field:    "frameCount",
				Expected: fmt.Sprintf("%d", expected.ExpectedFrameCount),
				Actual:   fmt.Sprintf("%d", derived),
				Severity: SeverityError,
			})
		}
	}

	return ValidationResult{
		IsExactMatch: len(diffs) == 0,
		Differences:  diffs,
	}
}
