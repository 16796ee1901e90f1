package watch

import (
	"context"
	"fmt"
	"os"

	"github.com/klytics/slidetext/internal/batch"
	"github.com/klytics/slidetext/internal/formats/pptx"
)

// ExtractHandler returns a Handler that extracts each package with ext and
// writes its records to the sidecar chosen by SidecarPath.
func ExtractHandler(ext *pptx.Extractor, outDir string) Handler {
	return func(ctx context.Context, path string) (string, error) {
		pres, err := ext.ReadFile(ctx, path)
		if err != nil {
			return "", err
		}
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return "", fmt.Errorf("could not create output directory %s: %w", outDir, err)
			}
		}
		out := SidecarPath(path, outDir)
		if err := batch.WriteRecords(out, pres.Slides); err != nil {
			return "", err
		}
		return out, nil
	}
}
