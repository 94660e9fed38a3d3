package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pizza-maniac/internal/catalog"
	"pizza-maniac/internal/model"

	"github.com/shopspring/decimal"
)

type sample struct {
	category model.Category
	name     string
	price    string
	stock    int
}

// sampleMenu is the default house menu. Hawaiian ships unavailable and the
// last-slice special has a single unit so stock exhaustion is easy to try.
var sampleMenu = []sample{
	{model.CategoryPizza, "Margherita", "8.50", 40},
	{model.CategoryPizza, "Pepperoni", "9.90", 40},
	{model.CategoryPizza, "Quattro Formaggi", "11.20", 25},
	{model.CategoryPizza, "Diavola", "10.40", 25},
	{model.CategoryPizza, "Hawaiian", "9.50", 10},
	{model.CategoryPizza, "Last Slice Special", "6.00", 1},
	{model.CategoryDrink, "Cola", "2.00", 120},
	{model.CategoryDrink, "Lemonade", "2.50", 80},
	{model.CategoryDrink, "Sparkling Water", "1.80", 100},
}

// generateSampleMenu writes a gzipped YAML menu for catalog seeding.
func main() {
	out := flag.String("out", "data/menu/menu.yaml.gz", "output file; gzipped when it ends in .gz")
	flag.Parse()

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	items := make([]model.CreateProductRequest, len(sampleMenu))
	for i, s := range sampleMenu {
		price := decimal.RequireFromString(s.price)
		stock := s.stock
		items[i] = model.CreateProductRequest{
			Category: s.category,
			Name:     s.name,
			Price:    &price,
			Stock:    &stock,
		}
		if s.name == "Hawaiian" {
			unavailable := false
			items[i].IsAvailable = &unavailable
		}
	}

	if err := writeMenu(*out, items); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d products\n", *out, len(items))
}

func writeMenu(path string, items []model.CreateProductRequest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return catalog.Encode(file, items, catalog.IsGzipped(path))
}
