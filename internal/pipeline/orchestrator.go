// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Deps are the orchestrator's collaborators. Uploader and Notifier may be
// nil; their stages are then recorded as skipped warnings.
type Deps struct {
	Generator Generator
	Renderer  Renderer
	Quality   QualityChecker
	Metadata  MetadataExtractor
	Uploader  Uploader
	Notifier  Notifier
	Log       Logger
}

// Orchestrator runs the stage sequence for each track.
type Orchestrator struct {
	deps         Deps
	stageTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

// New returns an orchestrator. A nil Log discards transitions.
func New(deps Deps, cfg types.OrchestratorConfig) *Orchestrator {
	if deps.Log == nil {
		deps.Log = discardLogger{}
	}
	return &Orchestrator{
		deps:         deps,
		stageTimeout: cfg.StageTimeout,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Run produces the main track for topic and, when dualMode is set, a
// derived track on a sub-niche of topic. Tracks run concurrently; a fatal
// failure on one never aborts the other. Success is true only when every
// requested track reached Done.
func (o *Orchestrator) Run(ctx context.Context, topic types.Topic, dualMode bool) types.RunResult {
	result := types.RunResult{
		RunID:     o.newID(),
		Topic:     topic,
		DualMode:  dualMode,
		StartedAt: o.now(),
	}
	o.deps.Log.Info("run %s started: topic=%q dual=%t", result.RunID, topic, dualMode)

	tracks := []*types.TrackResult{types.NewTrackResult(types.TrackMain, topic)}
	if dualMode {
		tracks = append(tracks, types.NewTrackResult(types.TrackDerived, ""))
	}

	var wg sync.WaitGroup
	for _, tr := range tracks {
		wg.Add(1)
		go func(tr *types.TrackResult) {
			defer wg.Done()
			o.runTrack(ctx, topic, tr)
		}(tr)
	}
	wg.Wait()

	result.Tracks = tracks
	result.Success = true
	for _, tr := range tracks {
		if !tr.Completed() {
			result.Success = false
		}
	}
	result.FinishedAt = o.now()

	verdict := "succeeded"
	if !result.Success {
		verdict = "failed"
	}
	o.deps.Log.Info("run %s %s in %s", result.RunID, verdict, result.Duration().Round(time.Second))
	return result
}

// runTrack drives one track to a terminal state. It writes only tr.
func (o *Orchestrator) runTrack(ctx context.Context, mainTopic types.Topic, tr *types.TrackResult) {
	req := GenerateRequest{Topic: mainTopic, Track: tr.Track}

	if tr.Track == types.TrackDerived {
		sub, err := o.subTopic(ctx, mainTopic)
		if err != nil {
			o.abort(tr, classify(types.StageGenerate, fmt.Errorf("sub-topic: %w", err)))
			return
		}
		tr.Topic = sub
		req.Topic = sub
		req.ParentTopic = mainTopic
		o.logf(tr, "sub-topic: %s", sub)
	}

	doc, err := o.generate(ctx, req)
	if !o.advance(tr, types.StageGenerate, err, types.StateGenerated) {
		return
	}
	o.logf(tr, "generated %q", doc.Title)

	art, err := o.render(ctx, doc)
	if !o.advance(tr, types.StageRender, err, types.StateRendered) {
		return
	}
	tr.Artifact = &art
	o.logf(tr, "rendered %s", art.Filename)

	report, err := o.check(ctx, art)
	report.Issues = slices.Clone(report.Issues)
	if err != nil {
		report.Passed = false
		report.Issues = append(report.Issues, err.Error())
	}
	var qerr error
	if !report.Passed {
		if len(report.Issues) == 0 {
			report.Issues = []string{"quality check failed"}
		}
		qerr = errors.New(strings.Join(report.Issues, "; "))
	}
	o.advance(tr, types.StageQuality, qerr, types.StateQualityChecked)
	if tr.Degraded {
		tr.QualityIssues = report.Issues
	}

	meta, err := o.extract(ctx, doc)
	if !o.advance(tr, types.StageMetadata, err, types.StateMetadataExtracted) {
		return
	}
	tr.Metadata = &meta
	if meta.Filename != art.Filename {
		o.warn(tr, fmt.Sprintf("metadata filename %s differs from artifact %s", meta.Filename, art.Filename))
	}

	location, err := o.upload(ctx, art, meta)
	o.advance(tr, types.StageUpload, err, types.StateUploaded)
	if err == nil {
		tr.Uploaded = true
		tr.Location = location
	}

	receipt, err := o.notify(ctx, meta, location)
	for _, c := range receipt.Failed() {
		o.warn(tr, fmt.Sprintf("notify %s: %s", c.Channel, c.Error))
	}
	o.advance(tr, types.StageNotify, err, types.StateNotified)

	tr.State = types.StateDone
	o.logf(tr, "done")
}

// advance records the outcome of stage on tr and moves it to next unless
// the failure is fatal. It reports whether the track may continue.
func (o *Orchestrator) advance(tr *types.TrackResult, stage types.Stage, err error, next types.TrackState) bool {
	serr := classify(stage, err)
	if serr == nil {
		tr.Stages[stage] = types.StatusSucceeded
		tr.State = next
		o.logf(tr, "%s: %s", stage, types.StatusSucceeded)
		return true
	}

	switch serr.Kind {
	case types.FatalStage:
		o.abort(tr, serr)
		return false
	case types.DegradedStage:
		tr.Stages[stage] = types.StatusDegraded
		tr.Degraded = true
		o.warn(tr, serr.Error())
	default:
		tr.Stages[stage] = types.StatusFailed
		o.warn(tr, serr.Error())
	}
	tr.State = next
	return true
}

func (o *Orchestrator) abort(tr *types.TrackResult, serr *StageError) {
	tr.Stages[serr.Stage] = types.StatusFailed
	tr.State = types.StateAborted
	tr.FatalError = serr.Error()
	o.deps.Log.Error("[%s] aborted at %s", tr.Track, serr)
}

func (o *Orchestrator) warn(tr *types.TrackResult, msg string) {
	tr.Warnings = append(tr.Warnings, msg)
	o.deps.Log.Warn("[%s] %s", tr.Track, msg)
}

func (o *Orchestrator) logf(tr *types.TrackResult, format string, args ...any) {
	o.deps.Log.Info("[%s] %s", tr.Track, fmt.Sprintf(format, args...))
}

// stageContext bounds a collaborator call. Cancellation of the parent is
// not propagated: an issued call runs to completion or timeout.
func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if o.stageTimeout > 0 {
		return context.WithTimeout(base, o.stageTimeout)
	}
	return context.WithCancel(base)
}

func (o *Orchestrator) subTopic(ctx context.Context, main types.Topic) (types.Topic, error) {
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	sub, err := o.deps.Generator.SubTopic(sctx, main)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(sub)) == "" {
		return "", errors.New("generator returned an empty sub-topic")
	}
	return sub, nil
}

func (o *Orchestrator) generate(ctx context.Context, req GenerateRequest) (types.DocumentRecord, error) {
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	doc, err := o.deps.Generator.Generate(sctx, req)
	if err != nil {
		return types.DocumentRecord{}, err
	}
	if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Body) == "" {
		return types.DocumentRecord{}, errors.New("generator returned an empty document")
	}
	return doc, nil
}

func (o *Orchestrator) render(ctx context.Context, doc types.DocumentRecord) (types.Artifact, error) {
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	art, err := o.deps.Renderer.Render(sctx, doc)
	if err != nil {
		return types.Artifact{}, err
	}
	if art.PDFPath == "" || art.Filename == "" {
		return types.Artifact{}, errors.New("renderer returned no artifact")
	}
	return art, nil
}

func (o *Orchestrator) check(ctx context.Context, art types.Artifact) (QualityReport, error) {
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.deps.Quality.Check(sctx, art)
}

func (o *Orchestrator) extract(ctx context.Context, doc types.DocumentRecord) (types.MetadataRecord, error) {
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.deps.Metadata.Extract(sctx, doc)
}

func (o *Orchestrator) upload(ctx context.Context, art types.Artifact, meta types.MetadataRecord) (string, error) {
	if o.deps.Uploader == nil {
		return "", errors.New("no uploader configured")
	}
	if err := naming.ValidatePrefix(art.Filename); err != nil {
		return "", fmt.Errorf("rejected: %w", err)
	}
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	location, err := o.deps.Uploader.Upload(sctx, art, meta)
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", errors.New("uploader returned no location")
	}
	return location, nil
}

func (o *Orchestrator) notify(ctx context.Context, meta types.MetadataRecord, location string) (NotifyReceipt, error) {
	if o.deps.Notifier == nil {
		return NotifyReceipt{}, errors.New("no notifier configured")
	}
	sctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.deps.Notifier.Notify(sctx, meta, location)
}

type discardLogger struct{}

func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
