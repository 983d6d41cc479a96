package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/martina/applicant-screener/internal/config"
	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/internal/extraction"
	"github.com/martina/applicant-screener/internal/intake"
	"github.com/martina/applicant-screener/internal/llm"
	"github.com/martina/applicant-screener/internal/logger"
	"github.com/martina/applicant-screener/internal/ranking"
	"github.com/martina/applicant-screener/internal/screening"
	"github.com/martina/applicant-screener/internal/server"
	"github.com/martina/applicant-screener/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing applicant intake, screening, and ranking endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer llmClient.Close() //nolint:errcheck

	files, err := storage.NewFileStore(cfg.UploadDir, log)
	if err != nil {
		return err
	}

	extractor := extraction.New(log)
	scorer := screening.NewLLMScorer(llmClient, llm.TierStandard, cfg.ScreeningTimeout, log)
	rankEngine := ranking.NewEngine(database, log)
	orchestrator := screening.NewOrchestrator(database, scorer, rankEngine, extractor, log)
	queue := screening.NewQueue(orchestrator, log)
	defer queue.Wait()

	pipeline := intake.NewPipeline(database, files, extractor, queue, cfg.MaxFileSizeBytes(), log)

	log.Info("starting applicant screener",
		zap.Int("port", cfg.Port),
		zap.String("upload_dir", cfg.UploadDir),
		zap.Float64("top_percentage", cfg.TopPercentage))

	srv := server.New(server.Config{
		Port:              cfg.Port,
		MaxUploadBytes:    cfg.MaxFileSizeBytes(),
		TopPercentage:     cfg.TopPercentage,
		MinScoreThreshold: cfg.MinScoreThreshold,
	}, database, pipeline, queue, rankEngine, files, log)

	return srv.Start()
}
