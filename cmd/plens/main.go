// ProofLens CLI - verify task photos from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/prooflens/prooflens/internal/config"
	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/storage"
	"github.com/prooflens/prooflens/internal/verify"
)

var (
	// Config
	dataDir string

	// Version
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plens",
		Short: "ProofLens - photo evidence verification for tasks",
		Long: `ProofLens checks whether a photo plausibly shows a task as done.

It analyzes the task wording, extracts heuristic features from the
photo, and scores the match. Everything runs locally; no cloud
vision service is involved.`,
	}

	// Global flags
	defaults := config.Default()
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaults.DataDir, "data directory")

	// Commands
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*storage.DB, *storage.VerificationStore, error) {
	cfg := config.Default()
	cfg.DataDir = dataDir

	db, err := storage.Open(storage.Config{Path: cfg.DBPath()})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, storage.NewVerificationStore(db), nil
}

// verifyCmd runs the pipeline on one task and image
func verifyCmd() *cobra.Command {
	var (
		notes    string
		category string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "verify <title> <image-file>",
		Short: "Verify a task against a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, imagePath := args[0], args[1]

			imageData, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			task := core.TaskDescriptor{
				Title:    title,
				Notes:    notes,
				Category: core.TaskCategory(category),
				Priority: core.Priority(priority),
			}

			db, store, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			pipeline := verify.NewPipeline(verify.Config{})
			result, err := pipeline.Verify(context.Background(), task, imageData, func(p verify.Progress) {
				fmt.Printf("  [%3.0f%%] %s\n", p.Fraction*100, p.Phase)
			})
			if err != nil {
				return err
			}

			v := &core.Verification{
				ID:              uuid.New().String(),
				Status:          result.Status,
				Task:            task,
				Completed:       result.Completed,
				Confidence:      result.Confidence,
				Feedback:        result.Feedback,
				MatchedElements: result.MatchedElements,
				Features:        result.Features,
				ImageHash:       result.ImageHash,
				CreatedAt:       time.Now().UTC(),
			}
			if err := store.Create(v); err != nil {
				return fmt.Errorf("failed to save verification: %w", err)
			}

			fmt.Println()
			if result.Completed {
				fmt.Println("✅ Verified")
			} else {
				fmt.Println("❌ Not verified")
			}
			fmt.Printf("   Confidence: %.0f%%\n", result.Confidence*100)
			fmt.Printf("   %s\n", result.Feedback)
			if len(result.MatchedElements) > 0 {
				fmt.Printf("   Evidence: %s\n", strings.Join(result.MatchedElements, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "task notes")
	cmd.Flags().StringVar(&category, "category", "other", "task category")
	cmd.Flags().StringVar(&priority, "priority", "medium", "task priority")
	return cmd
}

// historyCmd lists stored verifications
func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent verifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := store.List(limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No verifications yet.")
				return nil
			}

			for _, v := range list {
				mark := "❌"
				if v.Completed {
					mark = "✅"
				}
				fmt.Printf("%s %s  %-30s %3.0f%%  %s\n",
					mark, v.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(v.Task.Title, 30), v.Confidence*100, v.Status)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

// statsCmd summarizes stored outcomes
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show verification statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := store.GetStats()
			if err != nil {
				return err
			}

			fmt.Printf("Total:          %d\n", stats.Total)
			fmt.Printf("Verified:       %d\n", stats.Verified)
			fmt.Printf("Not verified:   %d\n", stats.NotVerified)
			fmt.Printf("Image failures: %d\n", stats.ImageFailed)
			fmt.Printf("Avg confidence: %.0f%%\n", stats.AvgConfidence*100)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("plens %s\n", version)
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
