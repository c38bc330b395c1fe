package main

import (
	"fmt"
	"log"
	"os"

	"docsearch-be/internal/config"
	"docsearch-be/pkg/chunker"
	"docsearch-be/pkg/textnorm"

	"github.com/fatih/color"
)

// Feeds a text file through normalization and chunking and prints what the
// ingestion pipeline would store, chunk by chunk. Usage:
//
//	go run ./cmd/debug/trace_chunking document.txt
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: trace_chunking <file>")
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	cfg := config.Load()

	header := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	header.Println("--- NORMALIZATION ---")
	normalized := textnorm.Normalize(string(raw))
	fmt.Printf("Raw length:        %d chars\n", len(raw))
	fmt.Printf("Normalized length: %d chars\n", len(normalized))
	if normalized == "" {
		warn.Println("Text normalized to empty: nothing would be stored.")
		return
	}

	header.Println("--- CHUNKING ---")
	chunks := chunker.Split(normalized, cfg.Retrieval.MaxChunkSize, cfg.Retrieval.ChunkOverlap)
	fmt.Printf("Produced %d chunks (max size %d, overlap %d)\n",
		len(chunks), cfg.Retrieval.MaxChunkSize, cfg.Retrieval.ChunkOverlap)

	for _, c := range chunks {
		title := c.SectionTitle
		if title == "" {
			title = "(no section)"
		}
		header.Printf("[Chunk %d] %s\n", c.Index, title)
		fmt.Printf("Length: %d runes\n", len([]rune(c.Text)))
		fmt.Printf("Preview: %s\n", preview(c.Text, 120))
	}

	header.Println("--- COVERAGE ---")
	total := 0
	for _, c := range chunks {
		total += len([]rune(c.Text))
	}
	ratio := float64(total) / float64(len([]rune(normalized)))
	fmt.Printf("Stored/normalized ratio: %.2f (>1.0 means overlap duplication)\n", ratio)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
