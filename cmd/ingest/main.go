package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/paperbase/ragd/internal/config"
	"github.com/paperbase/ragd/internal/setup"
	"github.com/paperbase/ragd/internal/setup/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Offline ingestion: index local files into the same collection the
// API serves, without going through the upload endpoint.
func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	filePath := flag.String("file", "", "Path to the document to index (.pdf or .txt)")
	chunkSize := flag.Int("chunkSize", 0, "Chunk size override")
	chunkOverlap := flag.Int("chunkOverlap", -1, "Chunk overlap override")
	countCommand := flag.Bool("count", false, "Print the number of indexed chunks and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg := config.LoadConfig()
	if *chunkSize > 0 {
		cfg.ChunkSize = *chunkSize
	}
	if *chunkOverlap >= 0 {
		cfg.ChunkOverlap = *chunkOverlap
	}
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

	if *countCommand {
		count, err := components.Store.Count(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to count chunks")
		}
		log.Info().Int("chunks", count).Msg("Collection size")
		return
	}

	if *filePath == "" {
		log.Fatal().Msg("No file given, use -file <path>")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read file")
	}

	result, err := components.Pipeline.Ingest(ctx, filepath.Base(*filePath), data)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Ingestion failed")
	}

	log.Info().
		Str("document_id", result.DocumentID).
		Int("pages", result.PagesParsed).
		Int("chunks", result.ChunksIndexed).
		Msg("Ingestion successful")
}
