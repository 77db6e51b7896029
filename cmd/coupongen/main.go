package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// sampleCatalogues are written as gzipped CODE,AMOUNT files.
// FIVEOFF and WELCOME appear twice with different amounts; importing the files in order keeps the later amount.
var sampleCatalogues = map[string][]string{
	"couponbase1.gz": {
		"# launch coupons",
		"FIVEOFF,5.00",
		"WELCOME,10.00",
		"SUMMER2024,7.50",
	},
	"couponbase2.gz": {
		"FIVEOFF,6.00",
		"WINTER2024,12.00",
		"HOODIE20,20.00",
	},
	"couponbase3.gz": {
		"WELCOME,15.00",
		"SPRING2024,3.25",
		"",
		"BIGSPENDER,100.00",
	},
}

func main() {
	dataDir := flag.String("dir", "data/coupons", "directory the sample coupon files are written to")
	flag.Parse()

	if err := run(*dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	names := make([]string, 0, len(sampleCatalogues))
	for name := range sampleCatalogues {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		filePath := filepath.Join(dataDir, name)
		if err := writeCatalogue(filePath, sampleCatalogues[name]); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		fmt.Printf("Created %s with %d lines\n", filePath, len(sampleCatalogues[name]))
	}

	fmt.Println("\nImport them in order with:")
	fmt.Printf("  go run ./cmd/couponimport %s\n", filepath.Join(dataDir, "couponbase{1,2,3}.gz"))
	return nil
}

func writeCatalogue(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	for _, line := range lines {
		if _, err := fmt.Fprintln(gzipWriter, line); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush coupon file: %w", err)
	}
	return file.Close()
}
