package main

import (
	"os"

	"github.com/ethanbaker/soundscript/internal/api"
	"github.com/ethanbaker/soundscript/pkg/utils"
)

// Start the API server
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)
	utils.SetupLogger(cfg)

	// Start
	api.Start(cfg)
}
