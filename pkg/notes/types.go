package notes

import (
	"context"
	"path"
	"strings"
	"time"
)

// Date and time layouts of the persisted creation columns
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Transcript is a persisted transcription of an uploaded audio file
type Transcript struct {
	ID         uint   `json:"id"`
	FileName   string `json:"file_name"`  // Original file name without its extension
	Transcript string `json:"transcript"` // Full concatenated transcript text
	Date       string `json:"date"`       // Creation date (YYYY-MM-DD, UTC)
	Time       string `json:"time"`       // Creation time (HH:MM:SS, UTC)
}

// Summary is the AI-derived description and keyword set for a transcript
type Summary struct {
	ID              uint   `json:"id"`
	TranscriptionID uint   `json:"transcription_id"`
	Summary         string `json:"summary"`
	Keywords        string `json:"keywords"` // Space separated
}

// Listing is one row of the transcript list
type Listing struct {
	ID       uint    `json:"id"`
	FileName string  `json:"file_name"`
	Date     string  `json:"date"`
	Keywords *string `json:"keywords"`
}

// Detail is a transcript joined with its summary, if any
type Detail struct {
	TranscriptionID uint    `json:"transcription_id"`
	FileName        string  `json:"file_name"`
	Date            string  `json:"date"`
	Transcript      string  `json:"transcript"`
	Summary         *string `json:"summary"`
	Keywords        *string `json:"keywords"`
}

// HasSummary reports whether a summary row was joined
func (d *Detail) HasSummary() bool {
	return d.Summary != nil || d.Keywords != nil
}

// Store is the persistence gateway for transcripts and their summaries.
// Every call is a single statement; nothing spans a transaction
type Store interface {
	// InsertTranscript stores a transcript and returns its generated id
	InsertTranscript(ctx context.Context, fileName, transcript string) (uint, error)

	// DeleteTranscript removes a transcript and, by cascade, its summaries.
	// It reports false when no row matched
	DeleteTranscript(ctx context.Context, id uint) (bool, error)

	// InsertSummary stores a summary for an existing transcript
	InsertSummary(ctx context.Context, transcriptionID uint, summary, keywords string) error

	// ListTranscripts returns every transcript, newest first, with the
	// keywords of its latest summary
	ListTranscripts(ctx context.Context) ([]*Listing, error)

	// GetTranscript returns a transcript joined with its latest summary, or
	// nil when the id does not exist
	GetTranscript(ctx context.Context, id uint) (*Detail, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying handle
	Close() error
}

// Clock returns the current time. Stores take one so tests can pin creation dates
type Clock func() time.Time

// StampNow formats the creation date and time columns in UTC
func StampNow(clock Clock) (string, string) {
	if clock == nil {
		clock = time.Now
	}
	now := clock().UTC()
	return now.Format(DateLayout), now.Format(TimeLayout)
}

// StripExtension removes a trailing ".ext" from a file name. A dot that starts
// the final path element is not treated as an extension separator
func StripExtension(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name
	}

	ext := name[dot:]
	if strings.Contains(ext, "/") || len(ext) == 1 {
		return name
	}

	// Keep dotfiles such as "dir/.mp3" intact
	if name[dot-1] == '/' {
		return name
	}

	return name[:dot]
}

// BaseName returns the final element of an uploaded file name, accepting
// both slash styles since browsers on Windows may send full paths
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
