// Package catalog loads menu seed files and upserts them into the product store.
package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"pizza-maniac/internal/model"

	"gopkg.in/yaml.v3"
)

// Loader defines the interface for loading menu seed files.
type Loader interface {
	// Load reads a seed file and returns its product entries.
	Load(ctx context.Context, path string) ([]model.CreateProductRequest, error)
}

// IsGzipped reports whether path names a gzip-compressed seed file.
func IsGzipped(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Decode reads a YAML list of products from r, decompressing it first when
// gzipped is set.
func Decode(r io.Reader, gzipped bool) ([]model.CreateProductRequest, error) {
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var items []model.CreateProductRequest
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if err == io.EOF {
			return []model.CreateProductRequest{}, nil
		}
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	return items, nil
}

// Encode writes items as a YAML list, gzip-compressed when gzipped is set.
func Encode(w io.Writer, items []model.CreateProductRequest, gzipped bool) error {
	var gz *gzip.Writer
	if gzipped {
		gz = gzip.NewWriter(w)
		w = gz
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode menu: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush menu: %w", err)
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}
