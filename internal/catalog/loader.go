package catalog

import (
	"context"
	"fmt"
	"os"

	"pizza-maniac/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for seed files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based menu loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "menu-loader").Logger(),
	}
}

// Load reads a menu file. Files ending in .gz are gunzipped first.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.CreateProductRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading menu file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open menu file")
		return nil, fmt.Errorf("failed to open menu file %s: %w", filePath, err)
	}
	defer file.Close()

	items, err := Decode(file, IsGzipped(filePath))
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read menu file")
		return nil, fmt.Errorf("menu file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", len(items)).
		Msg("menu file loaded successfully")

	return items, nil
}
