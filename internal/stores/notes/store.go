package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// latestSummaryJoin attaches at most one summary per transcript: the newest
const latestSummaryJoin = `LEFT JOIN summarization AS s ON s.id = (
	SELECT MAX(s2.id) FROM summarization AS s2 WHERE s2.transcription_id = t.id
)`

// Store handles transcript and summary persistence using GORM
type Store struct {
	db    *gorm.DB
	clock notes.Clock
}

var _ notes.Store = (*Store)(nil)

// NewMySQLStore creates a new notes store backed by MySQL
func NewMySQLStore(databaseURL string) (*Store, error) {
	return newStore(mysql.Open(databaseURL))
}

// NewSQLiteStore creates a new notes store backed by a SQLite file. The
// parent directory is created if needed and foreign keys are switched on so
// summaries cascade with their transcript
func NewSQLiteStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := newStore(sqlite.Open(path + "?_foreign_keys=on"))
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serialize through one connection
	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return store, nil
}

func newStore(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// migrate creates or updates the required database tables
func (s *Store) migrate() error {
	return s.db.AutoMigrate(&TranscriptionModel{}, &SummarizationModel{})
}

// InsertTranscript stores a transcript stamped with the current date and time
func (s *Store) InsertTranscript(ctx context.Context, fileName, transcript string) (uint, error) {
	date, clock := notes.StampNow(s.clock)

	model := &TranscriptionModel{
		FileName:   fileName,
		Transcript: transcript,
		Date:       date,
		Time:       clock,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return 0, fmt.Errorf("failed to create transcription: %w", err)
	}

	return model.ID, nil
}

// DeleteTranscript removes a transcript by id; summaries go with it through
// the ON DELETE CASCADE constraint
func (s *Store) DeleteTranscript(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&TranscriptionModel{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete transcription: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// InsertSummary stores a summary row. Repeated calls for one transcript add
// rows rather than replacing the previous one
func (s *Store) InsertSummary(ctx context.Context, transcriptionID uint, summary, keywords string) error {
	model := &SummarizationModel{
		TranscriptionID: transcriptionID,
		Summary:         summary,
		Keywords:        keywords,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	return nil
}

// ListTranscripts returns all transcripts ordered by creation date descending
func (s *Store) ListTranscripts(ctx context.Context) ([]*notes.Listing, error) {
	var listings []*notes.Listing

	result := s.db.WithContext(ctx).
		Table("transcriptions AS t").
		Select("t.id AS id, t.file_name AS file_name, t.date AS date, s.keywords AS keywords").
		Joins(latestSummaryJoin).
		Order("t.date DESC, t.time DESC, t.id DESC").
		Scan(&listings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list transcriptions: %w", result.Error)
	}

	if listings == nil {
		listings = []*notes.Listing{}
	}

	return listings, nil
}

// GetTranscript returns the transcript with its latest summary, or nil when
// no transcript has the id
func (s *Store) GetTranscript(ctx context.Context, id uint) (*notes.Detail, error) {
	var details []*notes.Detail

	result := s.db.WithContext(ctx).
		Table("transcriptions AS t").
		Select("t.id AS transcription_id, t.file_name AS file_name, t.date AS date, " +
			"t.transcript AS transcript, s.summary AS summary, s.keywords AS keywords").
		Joins(latestSummaryJoin).
		Where("t.id = ?", id).
		Limit(1).
		Scan(&details)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get transcription: %w", result.Error)
	}

	if len(details) == 0 {
		return nil, nil
	}

	return details[0], nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
