package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/embedder"
	"github.com/tkaraca/facegate/internal/recognition"
	"github.com/tkaraca/facegate/internal/web"
	"github.com/tkaraca/facegate/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Facegate attendance server.
The server accepts camera frames from school kiosks, runs them through the
recognition pipeline, and exposes attendance records and statistics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if cfg.Embedder.URL == "" {
		return errors.New("EMBEDDER_URL environment variable is required")
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.close() }()

	profiles, err := recognition.LoadProfiles(cfg.Recognition.ProfilesPath)
	if err != nil {
		return err
	}
	if len(profiles) > 0 {
		fmt.Printf("Loaded %d identity profiles from %s\n", len(profiles), cfg.Recognition.ProfilesPath)
	}

	cache := recognition.NewGalleryCache(storage.embeddings, cfg.Recognition.EmbeddingDim, cfg.Recognition.CacheTTL)
	engine := recognition.NewEngine(cfg.Recognition, profiles)
	learner := recognition.NewLearner(storage.embeddings, cfg.Recognition)
	detector := embedder.New(cfg.Embedder)
	scanner := recognition.NewScanner(detector, cache, engine, learner, storage.attendance)

	server := web.NewServer(cfg, handlers.Dependencies{
		Scanner:    scanner,
		Gallery:    cache,
		Engine:     engine,
		Attendance: storage.attendance,
		Students:   storage.students,
		Embeddings: storage.embeddings,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Shutdown error: %v\n", err)
		}
	}()

	return server.Start()
}
