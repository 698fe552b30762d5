package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/ilkin0/metadata-api/internal/logger"
	"github.com/ilkin0/metadata-api/internal/service"
)

// imgmeta runs the same extraction as POST /extract-metadata against local
// files and prints one JSON document per file.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [image-path...]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	slog.SetDefault(logger.NewWithWriter(os.Stderr, "development", os.Getenv("LOG_LEVEL")))

	svc := service.NewMetadataService()
	ctx := context.Background()
	failed := false

	for _, path := range os.Args[1:] {
		if err := printMetadata(ctx, svc, path); err != nil {
			slog.Error("failed to extract metadata",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func printMetadata(ctx context.Context, svc *service.MetadataService, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	resp, err := svc.ExtractMetadata(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
