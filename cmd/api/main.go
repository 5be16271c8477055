package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/paperbase/ragd/internal/api"
	"github.com/paperbase/ragd/internal/api/middleware"
	"github.com/paperbase/ragd/internal/config"
	"github.com/paperbase/ragd/internal/setup"
	"github.com/paperbase/ragd/internal/setup/logger"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg := config.LoadConfig()
	appLogger := logger.New(cfg.LogLevel)

	prompts, err := config.LoadPromptsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load prompts config")
	}

	ctx := context.Background()

	components, err := setup.Wire(ctx, cfg, prompts, &appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire components")
	}
	defer components.Store.Close()

	// API
	handler := api.NewHandler(
		components.Pipeline,
		components.Retriever,
		components.Answerer,
		components.Cache,
		components.Store,
		cfg.UploadDir,
		&appLogger,
	)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	api.RegisterDocs(container)

	// The API shares the listener with the bundled single-page UI.
	mux := http.NewServeMux()
	mux.Handle("/api/", container)
	mux.Handle("/apidocs.json", container)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	// CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info().
		Str("address", addr).
		Str("store", cfg.StoreBackend).
		Str("llm", cfg.LLMProvider).
		Str("embedder", cfg.EmbeddingProvider).
		Msg("Starting ragd API")

	server := http.Server{
		Addr:    addr,
		Handler: corsHandler.Handler(mux),
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
