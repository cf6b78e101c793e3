package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tkaraca/facegate/internal/config"
	"github.com/tkaraca/facegate/internal/recognition"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Inspect the recognition gallery",
}

var galleryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the gallery a school's scans currently match against",
	RunE:  runGalleryInfo,
}

var galleryRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a running server to rebuild a school's gallery",
	Long: `Ask a running facegate server to rebuild a school's gallery snapshot
immediately instead of waiting for the cache TTL. Use after enrolling new
students so the kiosk picks them up right away.`,
	RunE: runGalleryRefresh,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryInfoCmd)
	galleryCmd.AddCommand(galleryRefreshCmd)

	galleryInfoCmd.Flags().String("school", "", "School ID (required)")
	galleryInfoCmd.Flags().Bool("verbose", false, "List every identity with its sample count")

	galleryRefreshCmd.Flags().String("school", "", "School ID (required)")
	galleryRefreshCmd.Flags().String("server", "http://localhost:8080", "Base URL of the running server")
}

func runGalleryInfo(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	schoolID := mustGetString(cmd, "school")
	if schoolID == "" {
		return errors.New("--school is required")
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.close() }()

	cache := recognition.NewGalleryCache(storage.embeddings, cfg.Recognition.EmbeddingDim, cfg.Recognition.CacheTTL)
	snap := cache.Get(context.Background(), schoolID, true)

	samples := 0
	for _, entry := range snap.Entries {
		samples += entry.SampleCount
	}

	fmt.Printf("School:     %s\n", schoolID)
	fmt.Printf("Identities: %d\n", len(snap.Entries))
	fmt.Printf("Samples:    %d\n", samples)
	fmt.Printf("Indexed:    %t\n", snap.Indexed())

	if mustGetBool(cmd, "verbose") {
		fmt.Println()
		for _, entry := range snap.Entries {
			fmt.Printf("  %s  %d samples\n", entry.StudentID, entry.SampleCount)
		}
	}
	return nil
}

func runGalleryRefresh(cmd *cobra.Command, args []string) error {
	schoolID := mustGetString(cmd, "school")
	if schoolID == "" {
		return errors.New("--school is required")
	}
	serverURL := mustGetString(cmd, "server")

	body, err := json.Marshal(map[string]string{"school_id": schoolID})
	if err != nil {
		return fmt.Errorf("encoding refresh request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(serverURL+"/api/v1/gallery/refresh", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calling server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}

	var refreshed struct {
		SchoolID   string `json:"school_id"`
		Identities int    `json:"identities"`
		Indexed    bool   `json:"indexed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return fmt.Errorf("decoding server response: %w", err)
	}

	fmt.Printf("Refreshed gallery for school %s: %d identities (indexed: %t)\n",
		refreshed.SchoolID, refreshed.Identities, refreshed.Indexed)
	return nil
}
