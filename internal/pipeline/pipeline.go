// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the stage collaborators for one or two
// document tracks and applies the per-stage failure policy.
//
// Generate, Render, and MetadataExtract failures abort only their own
// track. A QualityCheck failure marks the track degraded and the track
// continues. Upload and Notify failures are recorded as warnings and never
// affect the run's success.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// GenerateRequest asks the Generator for one document.
type GenerateRequest struct {
	Topic types.Topic
	Track types.Track

	// ParentTopic is the main topic when Track is derived.
	ParentTopic types.Topic
}

// QualityReport is the outcome of a quality check.
type QualityReport struct {
	Passed    bool
	Issues    []string
	WordCount int
}

// ChannelResult is the delivery outcome on one notification channel.
type ChannelResult struct {
	Channel   string
	Delivered bool
	Error     string
}

// NotifyReceipt collects per-channel delivery outcomes.
type NotifyReceipt struct {
	Channels []ChannelResult
}

// Failed returns the channels that were not delivered.
func (r NotifyReceipt) Failed() []ChannelResult {
	var out []ChannelResult
	for _, c := range r.Channels {
		if !c.Delivered {
			out = append(out, c)
		}
	}
	return out
}

// Generator produces document records.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (types.DocumentRecord, error)

	// SubTopic identifies a narrower sub-niche of the main topic for the
	// derived track.
	SubTopic(ctx context.Context, main types.Topic) (types.Topic, error)
}

// Renderer turns a document record into markup and a distributable file.
type Renderer interface {
	Render(ctx context.Context, doc types.DocumentRecord) (types.Artifact, error)
}

// QualityChecker inspects a rendered artifact.
type QualityChecker interface {
	Check(ctx context.Context, art types.Artifact) (QualityReport, error)
}

// MetadataExtractor derives and persists the metadata record.
type MetadataExtractor interface {
	Extract(ctx context.Context, doc types.DocumentRecord) (types.MetadataRecord, error)
}

// Uploader publishes the artifact and returns a location reference.
type Uploader interface {
	Upload(ctx context.Context, art types.Artifact, meta types.MetadataRecord) (string, error)
}

// Notifier announces a finished paper on every configured channel.
type Notifier interface {
	Notify(ctx context.Context, meta types.MetadataRecord, location string) (NotifyReceipt, error)
}

// Logger receives stage transitions. runlog.Logger satisfies it.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// StageError is a classified stage failure.
type StageError struct {
	Stage types.Stage
	Kind  types.ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stagePolicy is the failure kind of every stage.
var stagePolicy = map[types.Stage]types.ErrorKind{
	types.StageGenerate: types.FatalStage,
	types.StageRender:   types.FatalStage,
	types.StageQuality:  types.DegradedStage,
	types.StageMetadata: types.FatalStage,
	types.StageUpload:   types.BestEffort,
	types.StageNotify:   types.BestEffort,
}

// classify wraps err with the failure kind of stage. The stage policy is
// authoritative: a collaborator cannot change how its failure is treated.
func classify(stage types.Stage, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) && se.Stage == stage {
		err = se.Err
	}
	return &StageError{Stage: stage, Kind: stagePolicy[stage], Err: err}
}

// IsFatal reports whether err is a stage error that aborts its track.
func IsFatal(err error) bool {
	var se *StageError
	return errors.As(err, &se) && se.Kind == types.FatalStage
}
