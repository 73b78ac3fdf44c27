// Package export renders stored CV records into downloadable byte output:
// plain text, a minimal OOXML word-processor package, or paginated PDF.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"path/filepath"
	"strings"

	"cv-formatter/internal/models"
	"cv-formatter/internal/services"
)

// Rasterizer turns a styled HTML document into a JPEG raster of the full
// page. Each call uses its own rendering surface; implementations must not
// share browser state between renders.
type Rasterizer interface {
	CaptureHTML(ctx context.Context, html string) ([]byte, error)
}

// Output is a finished export: the bytes plus the two headers the download
// endpoint sets.
type Output struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type Exporter struct {
	rasterizer Rasterizer
}

func NewExporter(rasterizer Rasterizer) *Exporter {
	return &Exporter{rasterizer: rasterizer}
}

// Render produces the requested target format from a stored record. The
// styled flag selects the raster-banded PDF path; it is ignored for other
// formats.
func (e *Exporter) Render(ctx context.Context, record *models.CVRecord, format string, styled bool) (*Output, error) {
	switch format {
	case "txt", "docx", "pdf":
	default:
		return nil, fmt.Errorf("%w: %q", services.ErrUnsupportedTarget, format)
	}

	var cv models.CanonicalCV
	if err := json.Unmarshal([]byte(record.FormattedCV), &cv); err != nil {
		return nil, &services.RenderError{Format: format, Err: fmt.Errorf("stored cv is not valid canonical JSON: %v", err)}
	}
	lines := cv.Flatten()

	switch format {
	case "txt":
		return &Output{
			Bytes:       []byte(strings.Join(lines, "\n")),
			ContentType: "text/plain",
			Filename:    exportFilename(record.OriginalFileName, "txt"),
		}, nil

	case "docx":
		b, err := renderDocx(lines)
		if err != nil {
			return nil, &services.RenderError{Format: "docx", Err: err}
		}
		return &Output{
			Bytes:       b,
			ContentType: docxContentType,
			Filename:    exportFilename(record.OriginalFileName, "docx"),
		}, nil

	default:
		var b []byte
		var err error
		if styled {
			b, err = e.renderStyledPDF(ctx, &cv)
		} else {
			b, err = renderTextPDF(lines)
		}
		if err != nil {
			return nil, &services.RenderError{Format: "pdf", Err: err}
		}
		return &Output{
			Bytes:       b,
			ContentType: "application/pdf",
			Filename:    exportFilename(record.OriginalFileName, "pdf"),
		}, nil
	}
}

// renderStyledPDF rasterizes the styled HTML rendition in a headless browser
// and slices the raster into page-height bands.
func (e *Exporter) renderStyledPDF(ctx context.Context, cv *models.CanonicalCV) ([]byte, error) {
	html, err := renderStyledHTML(cv)
	if err != nil {
		return nil, err
	}

	raster, err := e.rasterizer.CaptureHTML(ctx, html)
	if err != nil {
		return nil, err
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raster))
	if err != nil {
		return nil, fmt.Errorf("bad raster image: %v", err)
	}

	return renderImagePDF(raster, cfg.Width, cfg.Height)
}

// exportFilename strips only the final extension segment of the original
// name: "Jane.Doe.pdf" becomes "Jane.Doe_formatted.<ext>".
func exportFilename(originalFileName, ext string) string {
	base := strings.TrimSuffix(originalFileName, filepath.Ext(originalFileName))
	return fmt.Sprintf("%s_formatted.%s", base, ext)
}
