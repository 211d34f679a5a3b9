package notes

import (
	"errors"
	"io"
	"net/http"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/sdk"
	"github.com/ethanbaker/soundscript/pkg/transcribe"
	"github.com/ethanbaker/soundscript/pkg/workflow"
	"github.com/gin-gonic/gin"
)

type multipartFile interface {
	io.Reader
	io.Closer
}

// status maps an error to its HTTP status
func status(err error) int {
	var e *notes.Error
	if errors.As(err, &e) {
		return e.Kind.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// publicMessage logs err in full and returns the text safe to send back
func (ctrl *controller) publicMessage(c *gin.Context, err error) string {
	var e *notes.Error
	if !errors.As(err, &e) {
		e = &notes.Error{Kind: notes.KindInternal, Message: "Internal server error", Err: err}
	}

	event := ctrl.logger.Warn()
	if e.Kind != notes.KindValidation && e.Kind != notes.KindNotFound {
		event = ctrl.logger.Error()
	}
	event.
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("op", string(e.Op)).
		Str("kind", e.Kind.String()).
		Msg("[API]: request failed")

	return e.PublicMessage()
}

// abortWithError writes the {error} body used by most routes
func (ctrl *controller) abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(status(err), sdk.ErrorResponse{Error: ctrl.publicMessage(c, err)})
}

// uploadFailure builds the upload failure body: validation problems go in
// message, backend failures in error
func (ctrl *controller) uploadFailure(c *gin.Context, err error) sdk.FailureResponse {
	resp := sdk.FailureResponse{Success: false}
	if notes.IsKind(err, notes.KindValidation) {
		resp.Message = ctrl.publicMessage(c, err)
	} else {
		resp.Error = ctrl.publicMessage(c, err)
	}
	return resp
}

func chunksOrEmpty(chunks []transcribe.Chunk) []transcribe.Chunk {
	if chunks == nil {
		return []transcribe.Chunk{}
	}
	return chunks
}

func toSDKRun(run *workflow.Run) sdk.Run {
	if run == nil {
		return sdk.Run{}
	}

	out := sdk.Run{
		ID:                  run.ID.String(),
		State:               run.State.String(),
		FileName:            run.FileName,
		TranscriptionID:     run.TranscriptID,
		TranscriptionChunks: run.Chunks,
		FullTranscription:   run.Transcript,
	}
	if run.Insights != nil {
		out.Summary = run.Insights.Summary
		out.Keywords = run.Insights.Keywords
	}

	return out
}
