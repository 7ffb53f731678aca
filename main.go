package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/EmpoweredVote/dtr-indexing/internal/config"
	"github.com/EmpoweredVote/dtr-indexing/internal/indexing"
	"github.com/EmpoweredVote/dtr-indexing/internal/logging"
	"github.com/EmpoweredVote/dtr-indexing/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	h, err := indexing.Init(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start indexing service", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Get("/", RootHandler)

	r.Mount("/indexing", indexing.SetupRoutes(h, indexing.RouteOptions{
		AdminKeyHash:  cfg.AdminKeyHash,
		SubmitLimiter: middleware.NewRateLimiter(cfg.SubmitRate, cfg.SubmitBurst),
	}))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("store", string(cfg.Store)))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
