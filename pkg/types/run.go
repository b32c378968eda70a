// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage names one step of a track.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageRender   Stage = "render"
	StageQuality  Stage = "quality_check"
	StageMetadata Stage = "metadata_extract"
	StageUpload   Stage = "upload"
	StageNotify   Stage = "notify"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageGenerate, StageRender, StageQuality, StageMetadata, StageUpload, StageNotify}

// StageStatus is the outcome of one stage on one track.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusSucceeded StageStatus = "succeeded"
	StatusFailed    StageStatus = "failed"
	StatusDegraded  StageStatus = "degraded"
)

// TrackState is a track's position in the stage sequence.
type TrackState string

const (
	StatePending           TrackState = "pending"
	StateGenerated         TrackState = "generated"
	StateRendered          TrackState = "rendered"
	StateQualityChecked    TrackState = "quality_checked"
	StateMetadataExtracted TrackState = "metadata_extracted"
	StateUploaded          TrackState = "uploaded"
	StateNotified          TrackState = "notified"
	StateDone              TrackState = "done"
	StateAborted           TrackState = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s TrackState) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// TrackResult is the outcome of one track within a run.
type TrackResult struct {
	Track Track      `json:"track" yaml:"track"`
	Topic Topic      `json:"topic" yaml:"topic"`
	State TrackState `json:"state" yaml:"state"`

	// Stages records the status of every stage that was reached.
	Stages map[Stage]StageStatus `json:"stages" yaml:"stages"`

	// Degraded is set when the quality check reported problems.
	Degraded bool `json:"degraded" yaml:"degraded"`

	// QualityIssues is the checker's issue list when Degraded.
	QualityIssues []string `json:"quality_issues,omitempty" yaml:"quality_issues,omitempty"`

	Artifact *Artifact       `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Metadata *MetadataRecord `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Uploaded reports whether the upload stage produced a location.
	Uploaded bool   `json:"uploaded" yaml:"uploaded"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Warnings collects non-fatal problems in the order they occurred.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// FatalError is the message of the error that aborted the track.
	FatalError string `json:"fatal_error,omitempty" yaml:"fatal_error,omitempty"`
}

// NewTrackResult returns a pending track with every stage pending.
func NewTrackResult(track Track, topic Topic) *TrackResult {
	stages := make(map[Stage]StageStatus, len(Stages))
	for _, s := range Stages {
		stages[s] = StatusPending
	}
	return &TrackResult{
		Track:  track,
		Topic:  topic,
		State:  StatePending,
		Stages: stages,
	}
}

// Completed reports whether every stage through metadata extraction
// succeeded (quality may be degraded).
func (t TrackResult) Completed() bool {
	return t.State == StateDone
}

// RunResult is the orchestrator's terminal output.
type RunResult struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	Topic      Topic          `json:"topic" yaml:"topic"`
	DualMode   bool           `json:"dual_mode" yaml:"dual_mode"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Tracks     []*TrackResult `json:"tracks" yaml:"tracks"`

	// Success is true only when every requested track reached Done.
	Success bool `json:"success" yaml:"success"`
}

// Duration returns the wall-clock length of the run.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Track returns the result for the named track, or nil.
func (r RunResult) Track(name Track) *TrackResult {
	for _, t := range r.Tracks {
		if t.Track == name {
			return t
		}
	}
	return nil
}
