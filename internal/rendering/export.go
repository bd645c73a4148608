package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Exporter converts rendered resume text into a document. Binary formats
// (PDF, DOCX) live outside this module and plug in here.
type Exporter interface {
	Export(ctx context.Context, renderedText string) ([]byte, error)
	Format() string
}

// TextExporter emits the rendered text unchanged.
type TextExporter struct{}

// Format implements Exporter.
func (TextExporter) Format() string { return "txt" }

// Export implements Exporter.
func (TextExporter) Export(ctx context.Context, renderedText string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(renderedText) == "" {
		return nil, &ExportError{Format: "txt", Message: "rendered text is empty"}
	}
	return []byte(renderedText), nil
}

// ExportToFile runs exp and writes the document to path, creating parent
// directories as needed.
func ExportToFile(ctx context.Context, exp Exporter, renderedText, path string) error {
	doc, err := exp.Export(ctx, renderedText)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ExportError{Format: exp.Format(), Message: "failed to create output directory", Cause: err}
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return &ExportError{Format: exp.Format(), Message: fmt.Sprintf("failed to write %s", path), Cause: err}
	}
	return nil
}
