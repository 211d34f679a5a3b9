package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// sidecarRequest is the body sent to the transcription sidecar
type sidecarRequest struct {
	FileName string `json:"file_name"`
}

// sidecarResponse is the success body returned by the sidecar
type sidecarResponse struct {
	Transcripts []struct {
		Chunk      int    `json:"chunk"`
		Transcript string `json:"transcript"`
	} `json:"transcripts"`
}

// SidecarClient calls an external transcription service that reads files
// from the shared staging directory
type SidecarClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*SidecarClient)(nil)

// NewSidecarClient creates a client for the sidecar at baseURL
func NewSidecarClient(baseURL string, timeout time.Duration) *SidecarClient {
	return &SidecarClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe asks the sidecar to transcribe a staged file
func (c *SidecarClient) Transcribe(ctx context.Context, fileName string) ([]Chunk, error) {
	b, err := json.Marshal(sidecarRequest{FileName: fileName})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach transcription service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription service failed: %d: %s", resp.StatusCode, string(body))
	}

	var out sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	chunks := make([]Chunk, 0, len(out.Transcripts))
	for _, t := range out.Transcripts {
		chunks = append(chunks, Chunk{Index: t.Chunk, Text: t.Transcript})
	}

	return chunks, nil
}
