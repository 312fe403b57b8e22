// Package capture rasterizes the served agenda page into a PNG via a
// headless Chromium, as the bridge between the SVG renderer and the
// 1bpp panel pipeline.
package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters, matching the 7.5" panel the daemon targets.
const (
	DefaultWidth   = 480
	DefaultHeight  = 800
	defaultTimeout = 30 * time.Second
)

// Options defines parameters for one screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/agenda".
	URL string

	// OutputPath is where the PNG is written, e.g.
	// "/var/lib/agendacal/preview.png".
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. Zero
	// selects the defaults.
	Width  int
	Height int

	// Timeout bounds the entire capture operation.
	Timeout time.Duration
}

// AgendaPNG navigates a headless Chromium to opts.URL, waits for the
// page's data-ready marker (the /agenda page sets data-ready="true" on
// its root element once the SVG is in the DOM), and writes a full-color
// PNG screenshot at the requested resolution. Conversion to the panel's
// packed planes is the caller's job.
func AgendaPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay for final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
