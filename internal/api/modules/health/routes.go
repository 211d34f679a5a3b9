package health

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes registers the routes for the health module
func RegisterRoutes(g *gin.RouterGroup, store Pinger) {
	g.GET("/health", getStatus(store))
}
