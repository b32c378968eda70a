// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ErrorKind classifies a stage or source failure by how the run reacts to it.
type ErrorKind int

const (
	// FatalStage aborts the owning track.
	FatalStage ErrorKind = iota
	// DegradedStage is recorded and the track continues.
	DegradedStage
	// BestEffort is recorded as a warning and never affects success.
	BestEffort
	// SourceUnavailable marks a ranking source that contributed nothing.
	SourceUnavailable
)

// String returns the kind name used in logs and summaries.
func (k ErrorKind) String() string {
	switch k {
	case FatalStage:
		return "fatal"
	case DegradedStage:
		return "degraded"
	case BestEffort:
		return "best-effort"
	case SourceUnavailable:
		return "source-unavailable"
	default:
		return "unknown"
	}
}
