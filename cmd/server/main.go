package main

import (
	"log"
	"os"

	"github.com/arnavshah/duty-rotation-go/pkg/auth"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/arnavshah/duty-rotation-go/pkg/handlers"
	"github.com/arnavshah/duty-rotation-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(os.Getenv("ROTATION_CONFIG"))
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db := database.InitDB()
	if err := auth.EnsureAdminExists(db); err != nil {
		log.Printf("could not create admin user: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := &handlers.Handler{
		DB:      db,
		Config:  cfg,
		Secrets: auth.SecretsFromEnv(),
		Metrics: metrics.NewRegistry(reg),
	}
	r := handlers.NewRouter(h, reg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s (shift size %d, context %d, strategy %s)",
		port, cfg.ShiftSize, cfg.ContextSize, cfg.Strategy)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
