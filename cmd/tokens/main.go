package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bambooheng/finish-bbva-pdf-parser-without-detail/pkg/tokens"
)

// Debug tool: dumps the positioned tokens of each page so layout issues can
// be inspected without running the full pipeline.
func main() {
	pageFlag := flag.Int("page", 0, "dump a single 1-based page (0 = all)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tokens [-page N] <statement.pdf>")
		os.Exit(1)
	}

	src, err := tokens.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	for n := 1; n <= src.PageCount(); n++ {
		if *pageFlag != 0 && n != *pageFlag {
			continue
		}
		page, err := src.Page(ctx, n)
		if err != nil {
			log.Fatalf("Failed to extract page %d: %v", n, err)
		}
		fmt.Printf("=== Page %d (%.1f x %.1f), %d tokens ===\n",
			page.Number, page.Width, page.Height, len(page.Tokens))
		for _, t := range page.Tokens {
			fmt.Printf("  [%7.2f %7.2f %7.2f %7.2f] %q\n", t.X0, t.Y0, t.X1, t.Y1, t.Text)
		}
	}
}
