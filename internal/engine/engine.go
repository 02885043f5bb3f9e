// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates the report-generation pipeline: style
// profile training, prompt assembly, the external generation call, and
// document rendering. Storage is injected through narrow repository
// interfaces so the pipeline never touches the filesystem or database
// directly.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinscribe/report-engine/internal/catalog"
	"github.com/clinscribe/report-engine/internal/genclient"
	"github.com/clinscribe/report-engine/internal/prompt"
	"github.com/clinscribe/report-engine/internal/render"
	"github.com/clinscribe/report-engine/internal/style"
	"github.com/clinscribe/report-engine/pkg/types"
)

// PatientRepository supplies patient records. Get wraps ErrNotFound when
// the patient does not exist.
type PatientRepository interface {
	Get(ctx context.Context, patientID string) (*types.PatientRecord, error)
	List(ctx context.Context) ([]types.PatientRecord, error)
}

// CorpusRepository supplies the corpus of previously authored reports.
type CorpusRepository interface {
	List(ctx context.Context) ([]types.ExampleReport, error)
}

// State tracks a generation request through the pipeline. Completed and
// Failed are terminal; no request transitions back.
type State string

const (
	StateRequested          State = "requested"
	StateAssembling         State = "assembling"
	StateAwaitingGeneration State = "awaiting_generation"
	StateRendering          State = "rendering"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Result is the structured outcome of one generation request. On failure,
// Err carries the taxonomy kind and message; no artifact paths are reported
// and none remain on disk.
type Result struct {
	RequestID string                       `json:"request_id"`
	State     State                        `json:"state"`
	Files     map[types.OutputFormat]string `json:"files,omitempty"`
	Charts    []types.ChartSpec            `json:"charts,omitempty"`
	Err       *Error                       `json:"error,omitempty"`
}

// Succeeded reports whether the request reached Completed.
func (r *Result) Succeeded() bool {
	return r.State == StateCompleted
}

// Engine wires the pipeline stages together. One engine processes at most
// one generation request at a time: re-submission while a request is
// outstanding is rejected up front rather than queued.
type Engine struct {
	patients PatientRepository
	corpus   CorpusRepository
	profiles *style.Store
	gen      genclient.Generator
	renderer *render.Renderer
	catalog  *catalog.Catalog
	cfg      types.PipelineConfig
	log      zerolog.Logger

	busy chan struct{}
}

// New assembles an Engine. A nil generator selects the deterministic
// template fallback (no API key configured).
func New(patients PatientRepository, corpus CorpusRepository, profiles *style.Store, gen genclient.Generator, renderer *render.Renderer, cat *catalog.Catalog, cfg types.PipelineConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		patients: patients,
		corpus:   corpus,
		profiles: profiles,
		gen:      gen,
		renderer: renderer,
		catalog:  cat,
		cfg:      cfg,
		log:      logger,
		busy:     make(chan struct{}, 1),
	}
}

// Train rebuilds the style profile from the full corpus and installs it
// with an atomic swap. In-flight generations keep the snapshot they hold;
// an empty corpus degrades to an all-Low profile rather than failing.
func (e *Engine) Train(ctx context.Context) (*style.Summary, error) {
	corpus, err := e.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpus: %w", err)
	}

	profile := style.Build(corpus, time.Now(), e.cfg.Style)
	e.profiles.Install(profile)

	e.log.Info().
		Int("corpus_size", profile.CorpusSize).
		Time("built_at", profile.BuiltAt).
		Msg("style profile installed")

	return style.Summarize(profile), nil
}

// Generate runs one request through the pipeline state machine:
// Requested → Assembling → AwaitingGeneration → Rendering → Completed,
// with Failed reachable from each intermediate state. The returned Result
// always carries a terminal state.
func (e *Engine) Generate(ctx context.Context, req types.ReportRequest) *Result {
	res := &Result{RequestID: uuid.NewString(), State: StateRequested}

	select {
	case e.busy <- struct{}{}:
		defer func() { <-e.busy }()
	default:
		return e.fail(res, KindValidation, "a generation request is already in progress", nil)
	}

	res.State = StateAssembling

	if len(req.Formats) == 0 {
		return e.fail(res, KindValidation, "no output format requested", nil)
	}
	patient, err := e.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e.fail(res, KindValidation, fmt.Sprintf("unknown patient %q", req.PatientID), err)
		}
		return e.fail(res, KindIO, "reading patient record", err)
	}

	corpus, err := e.corpus.List(ctx)
	if err != nil {
		return e.fail(res, KindIO, "listing corpus", err)
	}

	// Snapshot of the active profile, held for the whole request. A lazy
	// first train covers engines that were never trained explicitly.
	profile := e.profiles.Current()
	if profile == nil {
		profile = style.Build(corpus, time.Now(), e.cfg.Style)
		e.profiles.Install(profile)
	}

	if bucket := profile.Bucket(req.Type); bucket != nil && bucket.Confidence == types.ConfidenceLow {
		e.log.Warn().
			Str("request_id", res.RequestID).
			Str("report_type", req.Type.String()).
			Msg("style bucket has no examples, generating with fallback style")
	}
	if len(patient.Tests) == 0 {
		e.log.Warn().
			Str("request_id", res.RequestID).
			Msg("patient record has no test results, report will state data insufficiency")
	}

	p, err := prompt.Assemble(patient, req, profile, corpus, e.cfg.Generation)
	if err != nil {
		return e.fail(res, KindValidation, "assembling prompt", err)
	}

	res.State = StateAwaitingGeneration

	var text string
	if e.gen != nil {
		text, err = e.gen.Generate(ctx, p)
		if err != nil {
			return e.fail(res, KindService, "generation service failed", err)
		}
	} else {
		e.log.Info().
			Str("request_id", res.RequestID).
			Msg("no API key configured, using template generation")
		text = genclient.Template(patient, profile.Bucket(req.Type))
	}

	res.State = StateRendering

	rendered, err := e.renderer.Render(text, patient, req.Type, req.Formats)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return e.fail(res, KindIO, "writing artifact", err)
		}
		return e.fail(res, KindRender, "rendering document", err)
	}

	res.Files = rendered.Artifacts
	res.Charts = rendered.Charts
	res.State = StateCompleted

	e.log.Info().
		Str("request_id", res.RequestID).
		Str("patient_id", req.PatientID).
		Str("report_type", req.Type.String()).
		Int("artifacts", len(res.Files)).
		Msg("report generated")

	return res
}

// ListRecent returns the newest artifacts from the output store.
func (e *Engine) ListRecent(limit int) ([]types.ArtifactMetadata, error) {
	return e.catalog.ListRecent(limit)
}

// Open hands a finished artifact to the OS viewer.
func (e *Engine) Open(path string) error {
	return e.catalog.Open(path)
}

// fail marks the result Failed with a classified error and logs it. The
// terminal state never transitions back.
func (e *Engine) fail(res *Result, kind Kind, message string, cause error) *Result {
	res.State = StateFailed
	res.Err = newError(kind, message, cause)
	e.log.Error().
		Str("request_id", res.RequestID).
		Str("kind", string(kind)).
		Err(cause).
		Msg(message)
	return res
}
