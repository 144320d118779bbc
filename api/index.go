package handler

import (
	"log"
	"net/http"
	"os"

	"github.com/arnavshah/duty-rotation-go/pkg/auth"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/arnavshah/duty-rotation-go/pkg/handlers"
	"github.com/arnavshah/duty-rotation-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load(os.Getenv("ROTATION_CONFIG"))
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	reg := prometheus.NewRegistry()
	h := &handlers.Handler{
		DB:      db,
		Config:  cfg,
		Secrets: auth.SecretsFromEnv(),
		Metrics: metrics.NewRegistry(reg),
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(h, reg)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
