package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethanbaker/api/pkg/api_key"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	notes_store "github.com/ethanbaker/soundscript/internal/stores/notes"
	"github.com/ethanbaker/soundscript/pkg/insight"
	"github.com/ethanbaker/soundscript/pkg/sdk"
	"github.com/ethanbaker/soundscript/pkg/staging"
	"github.com/ethanbaker/soundscript/pkg/transcribe"
	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/ethanbaker/soundscript/pkg/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	health_module "github.com/ethanbaker/soundscript/internal/api/modules/health"
	notes_module "github.com/ethanbaker/soundscript/internal/api/modules/notes"
)

// NewEngine builds the gin engine serving the notes API
func NewEngine(cfg *utils.Config, orchestrator *workflow.Orchestrator) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", sdk.APIKeyHeader, RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxUploadBytes := int64(cfg.GetIntWithDefault("MAX_UPLOAD_MB", 200)) << 20
	engine.MaxMultipartMemory = 32 << 20

	// Health stays reachable without a key
	health_module.RegisterRoutes(&engine.RouterGroup, orchestrator.Store())

	baseGroup := engine.Group("")
	if apiKey := cfg.Get("API_KEY"); apiKey != "" {
		baseGroup.Handlers = append(baseGroup.Handlers, api_key.APIKeyHeaderHandler(func(key string) bool {
			return key == apiKey
		}))
	} else {
		log.Warn().Msg("[API-MAIN]: API_KEY not set, routes are unauthenticated")
	}

	notes_module.RegisterRoutes(baseGroup, orchestrator, maxUploadBytes)

	return engine
}

// Start wires the store, staging area and backends, then serves until
// SIGINT or SIGTERM
func Start(cfg *utils.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	store, err := notes_store.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[API-MAIN]: failed to open database")
	}
	defer store.Close()

	area := staging.NewArea(cfg.GetWithDefault("STAGING_DIR", staging.DefaultDir))

	transcriber, err := transcribe.New(cfg, area.Dir())
	if err != nil {
		log.Fatal().Err(err).Msg("[API-MAIN]: failed to create transcription client")
	}

	insights, err := insight.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[API-MAIN]: failed to create insight client")
	}

	if path := cfg.Get("INSIGHT_PROMPTS_PATH"); path != "" {
		watcher, err := insight.WatchPrompts(ctx, path, insights)
		if err != nil {
			log.Warn().Err(err).Msg("[API-MAIN]: prompt hot reload disabled")
		} else {
			defer watcher.Stop()
		}
	}

	sweeper, err := staging.NewSweeperFromConfig(area, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[API-MAIN]: failed to schedule staging sweeper")
	}
	sweeper.Start()
	defer sweeper.Stop()

	orchestrator := workflow.New(store, area, transcriber, insights)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: NewEngine(cfg, orchestrator),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("[API-MAIN]: graceful shutdown failed")
		}
	}()

	log.Info().Str("port", port).Msg("[API-MAIN]: server listening")

	// Then after performing initial setup, start the server
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("[API-MAIN]: failed to start server")
	}
}
