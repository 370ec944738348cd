package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ChromeOptions configures a Chrome-backed session.
type ChromeOptions struct {
	Headless    bool
	NavTimeout  time.Duration
	SettleDelay time.Duration // wait after load for late-rendering listings
	// ScreenshotPath, when set, captures a full-page screenshot after each
	// navigation for selector debugging.
	ScreenshotPath string
}

// ChromeSession drives a headless Chrome tab via chromedp and snapshots the
// rendered DOM after each navigation. One session holds one tab; the engine
// processes listings sequentially against it.
type ChromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    ChromeOptions
	snap    *snapshot
}

// NewChromeSession launches a browser tab. Callers must Close the session on
// every exit path; the underlying process lives until then.
func NewChromeSession(opts ChromeOptions) (*ChromeSession, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.UserAgent(staticUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	return &ChromeSession{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTab, cancelAlloc},
		opts:    opts,
	}, nil
}

// Navigate loads the URL in the tab, waits for the body plus a settle delay,
// and snapshots the rendered markup.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavTimeout)
	defer cancel()

	// Propagate caller cancellation into the chromedp run.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var rendered string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if s.opts.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.opts.SettleDelay))
	}
	actions = append(actions, chromedp.OuterHTML("html", &rendered, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return &NavigationError{URL: url, Err: eris.Wrap(err, "chrome: load page")}
	}

	if s.opts.ScreenshotPath != "" {
		s.screenshot(url)
	}

	if blocked, kind := DetectBlock(nil, []byte(rendered)); blocked {
		return &NavigationError{URL: url, Err: eris.Errorf("chrome: blocked (%s)", kind)}
	}

	snap, err := newSnapshot(rendered, url)
	if err != nil {
		return &NavigationError{URL: url, Err: eris.Wrap(err, "chrome: parse document")}
	}
	s.snap = snap
	return nil
}

// screenshot is best effort; a failure only costs the debug artifact.
func (s *ChromeSession) screenshot(url string) {
	shotCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		zap.L().Debug("chrome: screenshot failed", zap.String("url", url), zap.Error(err))
		return
	}
	if err := os.WriteFile(s.opts.ScreenshotPath, buf, 0o644); err != nil {
		zap.L().Debug("chrome: write screenshot", zap.Error(err))
	}
}

func (s *ChromeSession) URL() string {
	if s.snap == nil {
		return ""
	}
	return s.snap.url
}

func (s *ChromeSession) Title() string { return s.snap.title() }

func (s *ChromeSession) Content() string {
	if s.snap == nil {
		return ""
	}
	return s.snap.raw
}

func (s *ChromeSession) QueryAll(selector string) []Element {
	return s.snap.queryAll(selector)
}

// Close tears down the tab and the browser process.
func (s *ChromeSession) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.snap = nil
	return nil
}
