package notes

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lecture.mp3", "lecture"},
		{"archive.tar.gz", "archive.tar"},
		{"no_extension", "no_extension"},
		{".mp3", ".mp3"},
		{"dir/.hidden", "dir/.hidden"},
		{"trailing.", "trailing."},
		{"v1.2/recording", "v1.2/recording"},
		{"my talk.M4A", "my talk"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripExtension(tt.in))
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "lecture.mp3", BaseName("lecture.mp3"))
	assert.Equal(t, "lecture.mp3", BaseName("../../etc/lecture.mp3"))
	assert.Equal(t, "talk.wav", BaseName(`C:\Users\me\talk.wav`))
	assert.Equal(t, "", BaseName(""))
	assert.Equal(t, "", BaseName("/"))
}

func TestStampNow(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	clock := func() time.Time { return time.Date(2024, 3, 2, 1, 30, 5, 0, loc) }

	date, clockTime := StampNow(clock)

	assert.Equal(t, "2024-03-01", date)
	assert.Equal(t, "16:30:05", clockTime)
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("sidecar said: CUDA out of memory")

	tests := []struct {
		name       string
		err        *Error
		wantKind   Kind
		wantStatus int
		wantPublic string
	}{
		{"validation", ValidationError(OpSaveTranscript, "Missing file_name or transcript"), KindValidation, http.StatusBadRequest, "Missing file_name or transcript"},
		{"not found", NotFoundError(OpDelete, "Transcription not found"), KindNotFound, http.StatusNotFound, "Transcription not found"},
		{"upload", UploadError("transcription failed", cause), KindUpstream, http.StatusInternalServerError, "Internal server error"},
		{"insight", InsightError("empty summary", nil), KindUpstream, http.StatusInternalServerError, "Internal server error"},
		{"persistence", PersistenceError(OpSaveSummary, "insert failed", cause), KindPersistence, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.Kind.HTTPStatus())
			assert.Equal(t, tt.wantPublic, tt.err.PublicMessage())
			assert.NotContains(t, tt.err.PublicMessage(), "CUDA")
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving: %w", PersistenceError(OpSaveTranscript, "insert failed", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, IsKind(err, KindPersistence))
	assert.False(t, IsKind(err, KindValidation))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "save-transcript (persistence): insert failed: disk full")
}
