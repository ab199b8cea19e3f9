package graphs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ScreenshotInfo describes a finished screenshot.
type ScreenshotInfo struct {
	File string
	// LoadedBytes is what the page downloaded, mostly the chart library scripts.
	LoadedBytes int64
	ImageBytes  int
}

// Screenshot loads a rendered HTML file in headless Chrome and saves a full page PNG.
// settle is how long to let the force layout run before capturing.
func Screenshot(ctx context.Context, htmlFile, pngFile string, settle time.Duration) (ScreenshotInfo, error) {
	abs, err := filepath.Abs(htmlFile)
	if err != nil {
		return ScreenshotInfo{}, err
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var loaded atomic.Int64
	countBytesAction := func(ctx context.Context) error {
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			if ev, ok := ev.(*network.EventLoadingFinished); ok {
				loaded.Add(int64(ev.EncodedDataLength))
			}
		})
		return nil
	}

	var buf []byte
	err = chromedp.Run(ctx,
		network.Enable(),
		chromedp.ActionFunc(countBytesAction),
		chromedp.EmulateViewport(1600, 1000),
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return ScreenshotInfo{}, fmt.Errorf("screenshot of %s: %w", htmlFile, err)
	}

	if err := os.WriteFile(pngFile, buf, 0o644); err != nil {
		return ScreenshotInfo{}, err
	}
	return ScreenshotInfo{File: pngFile, LoadedBytes: loaded.Load(), ImageBytes: len(buf)}, nil
}
