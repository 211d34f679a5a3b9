package notes

import (
	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/ethanbaker/soundscript/pkg/workflow"
	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes bounds a multipart upload unless MAX_UPLOAD_MB is set
const DefaultMaxUploadBytes = 200 << 20

// Register routes for the notes module
func RegisterRoutes(g *gin.RouterGroup, orchestrator *workflow.Orchestrator, maxUploadBytes int64) {
	registerJSONTagNames()

	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	ctrl := &controller{
		orchestrator:   orchestrator,
		maxUploadBytes: maxUploadBytes,
		logger:         utils.Component("api"),
	}

	// Step-by-step flow driven by the client
	g.POST("/upload", ctrl.Upload)                          // Stage and transcribe an audio file
	g.POST("/save-transcription", ctrl.SaveTranscription)   // Persist a transcript
	g.POST("/generate-insights", ctrl.GenerateInsights)     // Derive summary and keywords
	g.POST("/save-summary", ctrl.SaveSummary)               // Persist a summary
	g.GET("/get-transcriptions", ctrl.ListTranscriptions)   // List transcripts, newest first
	g.GET("/get-transcriptions/:id", ctrl.GetTranscription) // Get a transcript with its summary
	g.DELETE("/delete-transcription", ctrl.DeleteTranscription)

	// Whole flow in one request
	g.POST("/process", ctrl.Process)
}
