package sdk

import (
	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/transcribe"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Shared types */

// Chunk is one ordered segment of a transcription
type Chunk = transcribe.Chunk

// Listing is one row of the transcription list
type Listing = notes.Listing

// Detail is a transcription joined with its latest summary
type Detail = notes.Detail

/** Upload */

// UploadResponse is returned by POST /upload on success
type UploadResponse struct {
	Success             bool    `json:"success"`
	TranscriptionChunks []Chunk `json:"transcriptionChunks"`
	FullTranscription   string  `json:"fullTranscription"`
}

// FailureResponse is returned by the upload and save-transcription routes on
// failure. Validation problems fill Message; backend failures fill Error
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

/** Transcriptions */

// SaveTranscriptionRequest is the body of POST /save-transcription
type SaveTranscriptionRequest struct {
	FileName   string `json:"file_name" binding:"required"`
	Transcript string `json:"transcript" binding:"required"`
}

// SaveTranscriptionResponse carries the id of the new transcription
type SaveTranscriptionResponse struct {
	Success bool `json:"success"`
	ID      uint `json:"id"`
}

// DeleteTranscriptionRequest is the body of DELETE /delete-transcription
type DeleteTranscriptionRequest struct {
	ID uint `json:"id" binding:"required"`
}

/** Insights */

// GenerateInsightsRequest is the body of POST /generate-insights
type GenerateInsightsRequest struct {
	Transcription string `json:"transcription" binding:"required"`
}

// GenerateInsightsResponse carries the derived summary and keywords
type GenerateInsightsResponse struct {
	Success  bool   `json:"success"`
	Summary  string `json:"summary"`
	Keywords string `json:"keywords"`
}

// SaveSummaryRequest is the body of POST /save-summary
type SaveSummaryRequest struct {
	TranscriptionID uint   `json:"transcriptionId" binding:"required"`
	Summary         string `json:"summary" binding:"required"`
	Keywords        string `json:"keywords" binding:"required"`
}

// SaveSummaryResponse acknowledges a stored summary
type SaveSummaryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/** Generic */

// MessageResponse is a bare confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure body of the insight and transcription routes
type ErrorResponse struct {
	Error string `json:"error"`
}

/** Process */

// Run is the outcome of a full processing run
type Run struct {
	ID                  string  `json:"id"`
	State               string  `json:"state"`
	FileName            string  `json:"file_name"`
	TranscriptionID     uint    `json:"transcription_id,omitempty"`
	TranscriptionChunks []Chunk `json:"transcriptionChunks,omitempty"`
	FullTranscription   string  `json:"fullTranscription,omitempty"`
	Summary             string  `json:"summary,omitempty"`
	Keywords            string  `json:"keywords,omitempty"`
}

// ProcessResponse is returned by POST /process. A failed run still reports
// how far it got
type ProcessResponse struct {
	Success bool   `json:"success"`
	Run     Run    `json:"run"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
