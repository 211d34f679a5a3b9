package health

import (
	"net/http"

	"github.com/ethanbaker/soundscript/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Return status of the API and its database
func getStatus(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusServiceUnavailable, "Database unavailable", err.Error()).AsGinResponse())
			return
		}

		c.JSON(sdk.NewSuccessResponse[any]("OK", nil).AsGinResponse())
	}
}
