package notes

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tagNamesOnce sync.Once

// registerJSONTagNames makes validation errors report JSON field names
func registerJSONTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the request body into req. Missing fields and malformed
// bodies both come back as validation errors for op
func bindJSON(c *gin.Context, op notes.Op, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		missing := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			missing = append(missing, fe.Field())
		}
		return notes.ValidationError(op, "Missing required fields: "+strings.Join(missing, ", "))
	}

	if errors.Is(err, io.EOF) {
		return notes.ValidationError(op, "Request body is required")
	}

	return notes.ValidationError(op, "Could not parse request body")
}
