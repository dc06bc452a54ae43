package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	app "github.com/invoicer/backend/internal/application/invoice"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultDeviceScale   = 2.0
	defaultJPEGQuality   = 98
	defaultMaxConcurrent = 2

	captureSelector = "#invoice-capture"

	overflowScript   = `(function(){var p=document.getElementById('invoice-capture');return p.scrollHeight>p.clientHeight;})()`
	hideMarkerScript = `(function(){var m=document.getElementById('page-break-line');if(m){m.style.display='none';}return true;})()`
)

// ChromedpConfig contains configuration for the chromedp exporter
type ChromedpConfig struct {
	// DefaultTimeout for one export
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// ExecPath overrides the Chrome binary used when launching locally
	ExecPath string
	// DisableGPU disables GPU hardware acceleration
	DisableGPU bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// DeviceScale is the pixel ratio of JPEG captures (default: 2)
	DeviceScale float64
	// JPEGQuality is the JPEG encoder quality, 1-100 (default: 98)
	JPEGQuality int
	// MaxConcurrent limits parallel browser tabs (default: 2)
	MaxConcurrent int
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpExporter prints the invoice page with Chrome DevTools Protocol.
// PDF uses the browser's print engine; JPEG is an element screenshot
// re-encoded at the configured quality.
type ChromedpExporter struct {
	config      *ChromedpConfig
	engine      *TemplateEngine
	logger      *zap.Logger
	tabs        *semaphore.Weighted
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpExporter creates a chromedp-based exporter
func NewChromedpExporter(engine *TemplateEngine, config *ChromedpConfig) (*ChromedpExporter, error) {
	if engine == nil {
		return nil, errors.New("template engine is required")
	}
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.DeviceScale <= 0 {
		config.DeviceScale = defaultDeviceScale
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = defaultJPEGQuality
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaultMaxConcurrent
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpExporter{
		config: config,
		engine: engine,
		logger: logger,
		tabs:   semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
	r.initAllocator()
	return r, nil
}

// initAllocator initializes the Chrome allocator
func (r *ChromedpExporter) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", r.config.DisableGPU),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.WindowSize(1024, 1400),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if r.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ExecPath))
	}

	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Export implements invoice.Exporter for PDF and JPG
func (r *ChromedpExporter) Export(ctx context.Context, view app.View, format app.Format) (*app.Artifact, error) {
	if format != app.FormatPDF && format != app.FormatJPG {
		return nil, NewRenderError(ErrCodeUnsupportedFormat, "chromedp cannot export "+string(format), nil)
	}

	html, err := r.engine.RenderHTML(view, ModePrint)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	if err := r.tabs.Acquire(ctx, 1); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "no browser tab became available", err)
	}
	defer r.tabs.Release(1)

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var (
		overflow bool
		data     []byte
		ignored  bool
	)
	actions := []chromedp.Action{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady(captureSelector, chromedp.ByQuery),
		chromedp.Evaluate(overflowScript, &overflow),
		chromedp.Evaluate(hideMarkerScript, &ignored),
	}

	if format == app.FormatPDF {
		params := pdfParams(r.engine.PaperSize())
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithScale(params.scale).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			data = pdf
			return nil
		}))
	} else {
		actions = append(actions, chromedp.ScreenshotScale(captureSelector, r.config.DeviceScale, &data, chromedp.ByQuery))
	}

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("export timed out after %v", r.config.DefaultTimeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "export was cancelled", err)
		}

		r.logger.Error("chromedp export failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "browser returned no data", nil)
	}

	if format == app.FormatJPG {
		data, err = encodeJPEG(data, r.config.JPEGQuality)
		if err != nil {
			return nil, err
		}
	}

	r.logger.Info("invoice exported",
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Bool("overflow", overflow),
		zap.Duration("duration", time.Since(startTime)))

	return &app.Artifact{
		Filename:    view.Filename(format),
		ContentType: format.ContentType(),
		Data:        data,
		Overflow:    overflow,
	}, nil
}

// printParams holds the parameters for PDF printing
type printParams struct {
	paperWidth  float64
	paperHeight float64
	scale       float64
}

// pdfParams returns page dimensions in inches (Chrome uses inches)
func pdfParams(paper PaperSize) printParams {
	width, height := paper.Dimensions()
	return printParams{
		paperWidth:  mmToInches(width),
		paperHeight: mmToInches(height),
		scale:       1.0,
	}
}

// encodeJPEG re-encodes a PNG capture as JPEG at the given quality
func encodeJPEG(png []byte, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to decode capture", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode jpeg", err)
	}
	return buf.Bytes(), nil
}

// Close releases resources held by the exporter
func (r *ChromedpExporter) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ app.Exporter = (*ChromedpExporter)(nil)
