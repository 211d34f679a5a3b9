package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// APIKeyHeader carries the API key on every request
const APIKeyHeader = "X-API-KEY"

// Client wraps calls to the SoundScript backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// Transcription of long recordings can take minutes
		httpClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

// APIError is returned when the backend answers with a non-2xx status
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Upload sends an audio file for transcription
func (c *Client) Upload(ctx context.Context, fileName string, audio io.Reader) (*UploadResponse, error) {
	var out UploadResponse
	if err := c.doMultipart(ctx, "/upload", fileName, audio, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveTranscription stores a transcript and returns its id
func (c *Client) SaveTranscription(ctx context.Context, req *SaveTranscriptionRequest) (uint, error) {
	var out SaveTranscriptionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/save-transcription", req, &out); err != nil {
		return 0, err
	}

	if out.ID == 0 {
		return 0, fmt.Errorf("no id returned")
	}

	return out.ID, nil
}

// GenerateInsights derives a summary and keywords for a transcript
func (c *Client) GenerateInsights(ctx context.Context, transcription string) (*GenerateInsightsResponse, error) {
	var out GenerateInsightsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generate-insights", &GenerateInsightsRequest{Transcription: transcription}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSummary stores a summary for a transcription
func (c *Client) SaveSummary(ctx context.Context, req *SaveSummaryRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/save-summary", req, nil)
}

// ListTranscriptions returns every transcription, newest first
func (c *Client) ListTranscriptions(ctx context.Context) ([]Listing, error) {
	var out []Listing
	if err := c.doJSON(ctx, http.MethodGet, "/get-transcriptions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTranscription returns a transcription with its latest summary
func (c *Client) GetTranscription(ctx context.Context, id uint) (*Detail, error) {
	var out Detail
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/get-transcriptions/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTranscription removes a transcription and its summaries
func (c *Client) DeleteTranscription(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/delete-transcription", &DeleteTranscriptionRequest{ID: id}, nil)
}

// Process uploads a file and runs every step on the server
func (c *Client) Process(ctx context.Context, fileName string, audio io.Reader) (*ProcessResponse, error) {
	var out ProcessResponse
	if err := c.doMultipart(ctx, "/process", fileName, audio, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is up
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// doMultipart uploads a file in the "file" form field
func (c *Client) doMultipart(ctx context.Context, path, fileName string, file io.Reader, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, out)
}

// do sends a prepared request and decodes a successful response into out
func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
