package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rahul/finbot/internal/catalog"
	"github.com/rahul/finbot/internal/engine"
)

// Renderer turns an execution into a PNG image.
type Renderer interface {
	Render(ctx context.Context, exec *engine.Execution) ([]byte, error)
}

// ChromeRenderer rasterizes the HTML card with a headless Chrome. The
// browser is started on first use and shared by later renders.
type ChromeRenderer struct {
	Catalog  *catalog.Catalog
	Width    int
	Headful  bool
	Timeout  time.Duration
	execPath string

	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

func NewChromeRenderer(cat *catalog.Catalog, width int, timeout time.Duration) *ChromeRenderer {
	if cat == nil {
		cat = catalog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{Catalog: cat, Width: width, Timeout: timeout}
}

// WithExecPath points the renderer at a specific Chrome binary.
func (r *ChromeRenderer) WithExecPath(path string) *ChromeRenderer {
	r.execPath = path
	return r
}

func (r *ChromeRenderer) initBrowser() error {
	if r.browserCtx != nil {
		select {
		case <-r.browserCtx.Done():
			r.cleanup()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", !r.Headful),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	r.browserCtx, r.browserCancel = chromedp.NewContext(r.allocCtx)

	if err := chromedp.Run(r.browserCtx); err != nil {
		r.cleanup()
		return err
	}
	return nil
}

func (r *ChromeRenderer) cleanup() {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	r.browserCtx = nil
	r.allocCtx = nil
}

// Render loads the card into a fresh tab and screenshots the card element.
func (r *ChromeRenderer) Render(ctx context.Context, exec *engine.Execution) ([]byte, error) {
	doc, err := HTML(exec, r.Catalog, r.Width)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	err = r.initBrowser()
	browserCtx := r.browserCtx
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, r.Timeout)
	defer cancel()

	// abandon the tab when the caller gives up
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var png []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitVisible(CardSelector, chromedp.ByQuery),
		chromedp.Screenshot(CardSelector, &png, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render screenshot: %w", err)
	}
	return png, nil
}

// Close shuts the shared browser down. A later Render starts a new one.
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanup()
}
