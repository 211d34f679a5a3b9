package notes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/sdk"
	"github.com/ethanbaker/soundscript/pkg/workflow"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type controller struct {
	orchestrator   *workflow.Orchestrator
	maxUploadBytes int64
	logger         zerolog.Logger
}

// Upload handles POST requests carrying an audio file to transcribe
func (ctrl *controller) Upload(c *gin.Context) {
	run, err := ctrl.transcribeUpload(c)
	if err != nil {
		c.JSON(status(err), ctrl.uploadFailure(c, err))
		return
	}

	c.JSON(http.StatusOK, sdk.UploadResponse{
		Success:             true,
		TranscriptionChunks: chunksOrEmpty(run.Chunks),
		FullTranscription:   run.Transcript,
	})
}

// SaveTranscription handles POST requests to persist a transcript
func (ctrl *controller) SaveTranscription(c *gin.Context) {
	var req sdk.SaveTranscriptionRequest
	if err := bindJSON(c, notes.OpSaveTranscript, &req); err != nil {
		c.JSON(status(err), sdk.FailureResponse{Success: false, Message: ctrl.publicMessage(c, err)})
		return
	}

	id, err := ctrl.orchestrator.SaveTranscript(c.Request.Context(), req.FileName, req.Transcript)
	if err != nil {
		c.JSON(status(err), sdk.FailureResponse{Success: false, Message: ctrl.publicMessage(c, err)})
		return
	}

	c.JSON(http.StatusOK, sdk.SaveTranscriptionResponse{Success: true, ID: id})
}

// GenerateInsights handles POST requests to derive a summary and keywords
func (ctrl *controller) GenerateInsights(c *gin.Context) {
	var req sdk.GenerateInsightsRequest
	if err := bindJSON(c, notes.OpInsight, &req); err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	insights, err := ctrl.orchestrator.GenerateInsights(c.Request.Context(), req.Transcription)
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sdk.GenerateInsightsResponse{
		Success:  true,
		Summary:  insights.Summary,
		Keywords: insights.Keywords,
	})
}

// SaveSummary handles POST requests to persist a summary
func (ctrl *controller) SaveSummary(c *gin.Context) {
	var req sdk.SaveSummaryRequest
	if err := bindJSON(c, notes.OpSaveSummary, &req); err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	if err := ctrl.orchestrator.SaveSummary(c.Request.Context(), req.TranscriptionID, req.Summary, req.Keywords); err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sdk.SaveSummaryResponse{
		Success: true,
		Message: "Summary and keywords saved successfully",
	})
}

// ListTranscriptions handles GET requests for every transcript
func (ctrl *controller) ListTranscriptions(c *gin.Context) {
	listings, err := ctrl.orchestrator.List(c.Request.Context())
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetTranscription handles GET requests for one transcript by id
func (ctrl *controller) GetTranscription(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctrl.abortWithError(c, notes.ValidationError(notes.OpGet, "Invalid transcription ID"))
		return
	}

	detail, err := ctrl.orchestrator.Get(c.Request.Context(), uint(id))
	if err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteTranscription handles DELETE requests to remove a transcript
func (ctrl *controller) DeleteTranscription(c *gin.Context) {
	var req sdk.DeleteTranscriptionRequest
	if err := bindJSON(c, notes.OpDelete, &req); err != nil {
		ctrl.abortWithError(c, notes.ValidationError(notes.OpDelete, "Transcription ID is required"))
		return
	}

	if err := ctrl.orchestrator.Delete(c.Request.Context(), req.ID); err != nil {
		ctrl.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sdk.MessageResponse{Message: "Transcription deleted successfully"})
}

// Process handles POST requests that run the whole flow for one upload
func (ctrl *controller) Process(c *gin.Context) {
	file, fileName, err := ctrl.openUpload(c)
	if err != nil {
		c.JSON(status(err), sdk.ProcessResponse{Success: false, Message: ctrl.publicMessage(c, err)})
		return
	}
	defer file.Close()

	run, err := ctrl.orchestrator.Process(c.Request.Context(), fileName, file)
	resp := sdk.ProcessResponse{Success: err == nil, Run: toSDKRun(run)}
	if err != nil {
		if notes.IsKind(err, notes.KindValidation) {
			resp.Message = ctrl.publicMessage(c, err)
		} else {
			resp.Error = ctrl.publicMessage(c, err)
		}
		c.JSON(status(err), resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// transcribeUpload opens the multipart file and runs the transcribe step
func (ctrl *controller) transcribeUpload(c *gin.Context) (*workflow.Run, error) {
	file, fileName, err := ctrl.openUpload(c)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ctrl.orchestrator.Transcribe(c.Request.Context(), fileName, file)
}

// openUpload reads the "file" form field within the upload size limit
func (ctrl *controller) openUpload(c *gin.Context) (multipartFile, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", notes.ValidationError(notes.OpUpload, "Uploaded file is too large")
		}
		return nil, "", notes.ValidationError(notes.OpUpload, "No file uploaded")
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", notes.UploadError("Failed to open upload", err)
	}

	return file, header.Filename, nil
}
