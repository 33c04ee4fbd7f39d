package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"factagent/internal/memory"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|dir]...",
	Short: "Load documents into the knowledge base",
	Long: `Reads text or markdown files and stores them as knowledge base
documents. Each file becomes one document, embedded for semantic search
during evidence retrieval. Directories are walked recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var ingested, skipped int
	for _, root := range args {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !ingestableFile(path) {
				skipped++
				return nil
			}
			if err := ingestFile(ctx, store, path); err != nil {
				logger.Warn("failed to ingest file", zap.String("path", path), zap.Error(err))
				skipped++
				return nil
			}
			ingested++
			return nil
		})
		if err != nil {
			return err
		}
	}

	count, err := store.DocumentCount()
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d documents (%d skipped), knowledge base now holds %d.\n", ingested, skipped, count)
	return nil
}

func ingestableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	default:
		return false
	}
}

func ingestFile(ctx context.Context, store *memory.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("empty file")
	}
	return store.StoreDocument(ctx, content, filepath.Base(path))
}
