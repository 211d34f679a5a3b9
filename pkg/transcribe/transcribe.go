package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethanbaker/soundscript/pkg/utils"
)

// Supported values of TRANSCRIBE_BACKEND
// ErrEmptyTranscript is returned when a backend answers without any text
var ErrEmptyTranscript = errors.New("transcription returned no text")

const (
	BackendSidecar = "sidecar"
	BackendWhisper = "whisper"
)

// Defaults for the sidecar backend
const (
	DefaultSidecarURL = "http://127.0.0.1:5000"
	DefaultTimeout    = 10 * time.Minute
)

// Chunk is one ordered segment of a transcription result
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Client turns a staged audio file into ordered transcript chunks
type Client interface {
	Transcribe(ctx context.Context, fileName string) ([]Chunk, error)
}

// Join concatenates chunk texts in index order, separated by single spaces
func Join(chunks []Chunk) string {
	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	texts := make([]string, 0, len(ordered))
	for _, chunk := range ordered {
		texts = append(texts, chunk.Text)
	}

	return strings.Join(texts, " ")
}

// New creates the transcription client selected by TRANSCRIBE_BACKEND. The
// whisper backend reads staged files from stagingDir
func New(cfg *utils.Config, stagingDir string) (Client, error) {
	backend := strings.ToLower(cfg.GetWithDefault("TRANSCRIBE_BACKEND", BackendSidecar))

	switch backend {
	case BackendSidecar:
		return NewSidecarClient(
			cfg.GetWithDefault("TRANSCRIBE_URL", DefaultSidecarURL),
			cfg.GetDurationWithDefault("TRANSCRIBE_TIMEOUT", DefaultTimeout),
		), nil

	case BackendWhisper:
		apiKey, err := cfg.Require("OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewWhisperClient(apiKey, stagingDir), nil

	default:
		return nil, fmt.Errorf("unsupported TRANSCRIBE_BACKEND %q", backend)
	}
}
