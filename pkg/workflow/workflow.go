package workflow

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ethanbaker/soundscript/pkg/insight"
	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/staging"
	"github.com/ethanbaker/soundscript/pkg/transcribe"
	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/rs/zerolog"
)

// Stager writes an upload where the transcription backend can read it
type Stager interface {
	Stage(name string, payload io.Reader) (*staging.Staged, error)
}

// InsightGenerator derives a summary and keywords from a transcript
type InsightGenerator interface {
	Generate(ctx context.Context, transcript string) (*insight.Insights, error)
}

// Orchestrator sequences upload, transcription, persistence and insight
// generation. Every step is also callable on its own
type Orchestrator struct {
	store       notes.Store
	stager      Stager
	transcriber transcribe.Client
	insights    InsightGenerator
	logger      zerolog.Logger
}

// New creates an orchestrator over its collaborators
func New(store notes.Store, stager Stager, transcriber transcribe.Client, insights InsightGenerator) *Orchestrator {
	return &Orchestrator{
		store:       store,
		stager:      stager,
		transcriber: transcriber,
		insights:    insights,
		logger:      utils.Component("workflow"),
	}
}

// Store returns the persistence gateway the orchestrator writes to
func (o *Orchestrator) Store() notes.Store {
	return o.store
}

// Transcribe stages an upload and transcribes it. The returned run is in
// StateTranscribed on success
func (o *Orchestrator) Transcribe(ctx context.Context, fileName string, payload io.Reader) (*Run, error) {
	run := newRun()
	logger := o.logger.With().Str("run_id", run.ID.String()).Str("file_name", fileName).Logger()

	staged, err := o.stager.Stage(fileName, payload)
	switch {
	case errors.Is(err, staging.ErrNoFile):
		return run, o.fail(run, notes.ValidationError(notes.OpUpload, "No file uploaded"))
	case errors.Is(err, staging.ErrNotAudio):
		return run, o.fail(run, notes.ValidationError(notes.OpUpload, "Uploaded file is not audio"))
	case err != nil:
		return run, o.fail(run, notes.UploadError("Failed to stage upload", err))
	}

	run.FileName = staged.Name
	if err := run.advance(StateUploaded); err != nil {
		return run, o.fail(run, err)
	}
	logger.Debug().Str("mime_type", staged.MimeType).Int64("size", staged.Size).Msg("[WORKFLOW]: upload staged")

	chunks, err := o.transcriber.Transcribe(ctx, staged.Name)
	if err != nil {
		return run, o.fail(run, notes.UploadError("Transcription failed", err))
	}

	run.Chunks = chunks
	run.Transcript = transcribe.Join(chunks)
	if strings.TrimSpace(run.Transcript) == "" {
		return run, o.fail(run, notes.UploadError("Transcription returned no text", transcribe.ErrEmptyTranscript))
	}
	if err := run.advance(StateTranscribed); err != nil {
		return run, o.fail(run, err)
	}
	logger.Info().Int("chunks", len(chunks)).Msg("[WORKFLOW]: transcription complete")

	return run, nil
}

// SaveTranscript persists a transcript under its extension-less file name and
// returns the new id
func (o *Orchestrator) SaveTranscript(ctx context.Context, fileName, transcript string) (uint, error) {
	if fileName == "" || transcript == "" {
		return 0, notes.ValidationError(notes.OpSaveTranscript, "Missing file_name or transcript")
	}

	id, err := o.store.InsertTranscript(ctx, notes.StripExtension(fileName), transcript)
	if err != nil {
		return 0, notes.PersistenceError(notes.OpSaveTranscript, "Failed to save transcription", err)
	}

	o.logger.Info().Uint("id", id).Msg("[WORKFLOW]: transcript saved")
	return id, nil
}

// GenerateInsights derives the summary and keywords of a transcript
func (o *Orchestrator) GenerateInsights(ctx context.Context, transcript string) (*insight.Insights, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, notes.ValidationError(notes.OpInsight, "Transcription is required")
	}

	insights, err := o.insights.Generate(ctx, transcript)
	if err != nil {
		return nil, notes.InsightError("Failed to generate insights", err)
	}

	return insights, nil
}

// SaveSummary persists a summary for an existing transcript. Repeated saves
// add rows; reads surface the newest
func (o *Orchestrator) SaveSummary(ctx context.Context, transcriptionID uint, summary, keywords string) error {
	if transcriptionID == 0 || summary == "" || keywords == "" {
		return notes.ValidationError(notes.OpSaveSummary, "Missing required fields: transcriptionId, summary, keywords")
	}

	if err := o.store.InsertSummary(ctx, transcriptionID, summary, keywords); err != nil {
		return notes.PersistenceError(notes.OpSaveSummary, "Failed to save summary", err)
	}

	o.logger.Info().Uint("transcription_id", transcriptionID).Msg("[WORKFLOW]: summary saved")
	return nil
}

// Process drives a full run. On failure the run reports the last completed
// state; a transcript saved before a later failure stays persisted
func (o *Orchestrator) Process(ctx context.Context, fileName string, payload io.Reader) (*Run, error) {
	run, err := o.Transcribe(ctx, fileName, payload)
	if err != nil {
		return run, err
	}

	id, err := o.SaveTranscript(ctx, run.FileName, run.Transcript)
	if err != nil {
		return run, o.fail(run, err)
	}
	run.TranscriptID = id
	if err := run.advance(StatePersisted); err != nil {
		return run, o.fail(run, err)
	}

	insights, err := o.GenerateInsights(ctx, run.Transcript)
	if err != nil {
		return run, o.fail(run, err)
	}
	run.Insights = insights

	if err := o.SaveSummary(ctx, id, insights.Summary, insights.Keywords); err != nil {
		return run, o.fail(run, err)
	}
	if err := run.advance(StateSummarized); err != nil {
		return run, o.fail(run, err)
	}

	o.logger.Info().Str("run_id", run.ID.String()).Uint("id", id).Msg("[WORKFLOW]: run complete")
	return run, nil
}

// List returns every transcript, newest first
func (o *Orchestrator) List(ctx context.Context) ([]*notes.Listing, error) {
	listings, err := o.store.ListTranscripts(ctx)
	if err != nil {
		return nil, notes.PersistenceError(notes.OpList, "Failed to fetch transcriptions", err)
	}
	return listings, nil
}

// Get returns a transcript with its latest summary
func (o *Orchestrator) Get(ctx context.Context, id uint) (*notes.Detail, error) {
	detail, err := o.store.GetTranscript(ctx, id)
	if err != nil {
		return nil, notes.PersistenceError(notes.OpGet, "Failed to fetch transcription", err)
	}
	if detail == nil {
		return nil, notes.NotFoundError(notes.OpGet, "Transcription not found")
	}
	return detail, nil
}

// Delete removes a transcript and its summaries
func (o *Orchestrator) Delete(ctx context.Context, id uint) error {
	deleted, err := o.store.DeleteTranscript(ctx, id)
	if err != nil {
		return notes.PersistenceError(notes.OpDelete, "Failed to delete transcription", err)
	}
	if !deleted {
		return notes.NotFoundError(notes.OpDelete, "Transcription not found")
	}

	o.logger.Info().Uint("id", id).Msg("[WORKFLOW]: transcript deleted")
	return nil
}

// fail records err on the run and logs it with the run's context
func (o *Orchestrator) fail(run *Run, err error) error {
	run.Err = err
	o.logger.Error().
		Err(err).
		Str("run_id", run.ID.String()).
		Str("state", run.State.String()).
		Str("kind", notes.KindOf(err).String()).
		Msg("[WORKFLOW]: run stopped")
	return err
}
