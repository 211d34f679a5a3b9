package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient transcribes staged files with the OpenAI Whisper API
type WhisperClient struct {
	client     *openai.Client
	stagingDir string
}

var _ Client = (*WhisperClient)(nil)

// NewWhisperClient creates a Whisper client using the given API key
func NewWhisperClient(apiKey, stagingDir string) *WhisperClient {
	return newWhisperClient(openai.DefaultConfig(apiKey), stagingDir)
}

func newWhisperClient(config openai.ClientConfig, stagingDir string) *WhisperClient {
	return &WhisperClient{
		client:     openai.NewClientWithConfig(config),
		stagingDir: stagingDir,
	}
}

// Transcribe uploads the staged file to Whisper. Each returned segment becomes
// one chunk
func (w *WhisperClient) Transcribe(ctx context.Context, fileName string) ([]Chunk, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filepath.Join(w.stagingDir, fileName),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription: %w", err)
	}

	if len(resp.Segments) == 0 {
		return []Chunk{{Index: 0, Text: strings.TrimSpace(resp.Text)}}, nil
	}

	chunks := make([]Chunk, 0, len(resp.Segments))
	for _, segment := range resp.Segments {
		chunks = append(chunks, Chunk{Index: segment.ID, Text: strings.TrimSpace(segment.Text)})
	}

	return chunks, nil
}
