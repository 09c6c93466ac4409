// ProofLens Daemon - the verification API service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prooflens/prooflens/internal/api"
	"github.com/prooflens/prooflens/internal/config"
	"github.com/prooflens/prooflens/internal/lexical"
	"github.com/prooflens/prooflens/internal/logging"
	"github.com/prooflens/prooflens/internal/storage"
	"github.com/prooflens/prooflens/internal/verify"
	"github.com/prooflens/prooflens/internal/vision"
)

var (
	configPath string
	dataDir    string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prooflens",
		Short: "ProofLens Daemon - photo evidence verification for tasks",
		RunE:  runDaemon,
	}

	defaults := config.Default()
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default <data-dir>/config.json)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", defaults.DataDir, "Data directory")
	rootCmd.Flags().IntVar(&port, "port", defaults.Server.Port, "HTTP server port")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Starting ProofLens Daemon...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags beat the config file when set explicitly.
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	if cfg.Features.DebugMode {
		logging.SetLevel(logging.DEBUG)
	}

	db, err := storage.Open(storage.Config{Path: cfg.DBPath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pipeline := verify.NewPipeline(verify.Config{
		Analyzer: lexical.NewAnalyzer(lexical.Config{
			CacheSize: cfg.Engine.LexicalCacheSize,
		}),
		Extractor: vision.NewExtractor(vision.Config{
			CacheSize:      cfg.Engine.VisionCacheSize,
			PixelSampleCap: cfg.Engine.PixelSampleCap,
			FillerLabels:   cfg.Engine.FillerLabels,
			Seed:           cfg.Engine.RandomSeed,
		}),
	})

	server := api.New(api.Config{
		Port:     cfg.Server.Port,
		Pipeline: pipeline,
		DB:       db,
	})

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\n🛑 Shutting down...")
		server.Stop(context.Background())
	}()

	logging.Info("data directory: %s", cfg.DataDir)
	fmt.Printf("🌐 Listening on http://localhost:%d\n", cfg.Server.Port)
	return server.Start()
}
