//go:build ignore

// This program generates test fixture files for slidetext.
package main

import (
	"fmt"
	"os"

	"github.com/klytics/slidetext/internal/formats/pptx/pptxtest"
)

func main() {
	if err := pptxtest.WriteFile("testdata/sample.pptx", pptxtest.Sample()); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.pptx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}
