package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Raster geometry: A4 at CSS 96dpi, captured at 2x device scale.
const (
	viewportWidth  = 794
	viewportHeight = 1123
	rasterScale    = 2.0
	rasterQuality  = 90
)

// ChromeRasterizer renders HTML in headless Chrome and captures the full
// page as a JPEG. Every call builds its own allocator, browser context and
// temp directory and tears them down on return, so concurrent renders never
// share a surface.
type ChromeRasterizer struct {
	chromePath string
}

func NewChromeRasterizer(chromePath string) *ChromeRasterizer {
	return &ChromeRasterizer{chromePath: chromePath}
}

func (r *ChromeRasterizer) CaptureHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, 60*time.Second)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "cv-render-")
	if err != nil {
		return nil, fmt.Errorf("failed to create render dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write render input: %v", err)
	}

	var raster []byte
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight, chromedp.EmulateScale(rasterScale)),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			raster, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(rasterQuality).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless render failed: %v", err)
	}

	return raster, nil
}
