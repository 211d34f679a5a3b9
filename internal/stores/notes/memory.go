package notes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethanbaker/soundscript/pkg/notes"
)

// InMemoryStore provides an in-memory implementation of notes.Store. Data is
// lost on restart
type InMemoryStore struct {
	transcripts map[uint]*notes.Transcript
	summaries   map[uint]*notes.Summary
	nextID      uint
	nextSumID   uint
	clock       notes.Clock
	mutex       sync.RWMutex
}

var _ notes.Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory notes store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		transcripts: make(map[uint]*notes.Transcript),
		summaries:   make(map[uint]*notes.Summary),
	}
}

// InsertTranscript stores a transcript and returns its id
func (s *InMemoryStore) InsertTranscript(ctx context.Context, fileName, transcript string) (uint, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	date, clock := notes.StampNow(s.clock)
	s.transcripts[s.nextID] = &notes.Transcript{
		ID:         s.nextID,
		FileName:   fileName,
		Transcript: transcript,
		Date:       date,
		Time:       clock,
	}

	return s.nextID, nil
}

// DeleteTranscript removes a transcript and its summaries
func (s *InMemoryStore) DeleteTranscript(ctx context.Context, id uint) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.transcripts[id]; !exists {
		return false, nil
	}

	delete(s.transcripts, id)
	for sid, summary := range s.summaries {
		if summary.TranscriptionID == id {
			delete(s.summaries, sid)
		}
	}

	return true, nil
}

// InsertSummary stores a summary for an existing transcript
func (s *InMemoryStore) InsertSummary(ctx context.Context, transcriptionID uint, summary, keywords string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.transcripts[transcriptionID]; !exists {
		return fmt.Errorf("transcription %d does not exist", transcriptionID)
	}

	s.nextSumID++
	s.summaries[s.nextSumID] = &notes.Summary{
		ID:              s.nextSumID,
		TranscriptionID: transcriptionID,
		Summary:         summary,
		Keywords:        keywords,
	}

	return nil
}

// ListTranscripts returns all transcripts ordered by creation date descending
func (s *InMemoryStore) ListTranscripts(ctx context.Context) ([]*notes.Listing, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	transcripts := make([]*notes.Transcript, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		transcripts = append(transcripts, t)
	}

	sort.Slice(transcripts, func(i, j int) bool {
		a, b := transcripts[i], transcripts[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID > b.ID
	})

	listings := make([]*notes.Listing, 0, len(transcripts))
	for _, t := range transcripts {
		listing := &notes.Listing{ID: t.ID, FileName: t.FileName, Date: t.Date}
		if summary := s.latestSummary(t.ID); summary != nil {
			keywords := summary.Keywords
			listing.Keywords = &keywords
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

// GetTranscript returns a transcript joined with its latest summary
func (s *InMemoryStore) GetTranscript(ctx context.Context, id uint) (*notes.Detail, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, exists := s.transcripts[id]
	if !exists {
		return nil, nil
	}

	detail := &notes.Detail{
		TranscriptionID: t.ID,
		FileName:        t.FileName,
		Date:            t.Date,
		Transcript:      t.Transcript,
	}
	if summary := s.latestSummary(id); summary != nil {
		text, keywords := summary.Summary, summary.Keywords
		detail.Summary = &text
		detail.Keywords = &keywords
	}

	return detail, nil
}

// latestSummary finds the newest summary of a transcript (called with mutex held)
func (s *InMemoryStore) latestSummary(transcriptionID uint) *notes.Summary {
	var latest *notes.Summary
	for _, summary := range s.summaries {
		if summary.TranscriptionID != transcriptionID {
			continue
		}
		if latest == nil || summary.ID > latest.ID {
			latest = summary
		}
	}
	return latest
}

// Ping always succeeds
func (s *InMemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *InMemoryStore) Close() error {
	return nil
}
