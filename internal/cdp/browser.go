package cdp

import (
	"context"
	"fmt"
	"time"

	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ajsharma/tab_cookies/internal/config"
	"github.com/ajsharma/tab_cookies/internal/cookies"
)

// Browser reads tabs and cookies from a Chrome instance listening on a
// remote debugging port.
type Browser struct {
	port    string
	timeout time.Duration
	log     *zap.Logger

	chromeProcess *ChromeProcess
}

// NewBrowser creates a Browser for the given port. Calls are bounded by timeout.
func NewBrowser(port string, timeout time.Duration, log *zap.Logger) *Browser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{
		port:    port,
		timeout: timeout,
		log:     log,
	}
}

// Start connects to Chrome, launching it first when cfg.AutoLaunch is set.
func Start(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Browser, error) {
	b := NewBrowser(cfg.ChromePort, cfg.Timeout, log)
	if !cfg.AutoLaunch {
		return b, nil
	}

	proc, err := LaunchChrome(LaunchOptions{
		Port:     cfg.ChromePort,
		StartURL: cfg.LaunchURL,
		ExecPath: cfg.ChromePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	if err := WaitForChrome(ctx, cfg.ChromePort, 30*time.Second); err != nil {
		_ = proc.Stop() // Best effort cleanup
		return nil, fmt.Errorf("chrome not ready: %w", err)
	}

	b.chromeProcess = proc
	b.log.Info("launched chrome", zap.Int("pid", proc.PID()), zap.String("port", cfg.ChromePort))
	return b, nil
}

// Close stops Chrome if this Browser launched it.
func (b *Browser) Close() error {
	if b.chromeProcess == nil {
		return nil
	}
	err := b.chromeProcess.Stop()
	b.chromeProcess = nil
	return err
}

// Info returns the /json/version details of the connected browser.
func (b *Browser) Info(ctx context.Context) (*BrowserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return DiscoverBrowserInfo(ctx, b.port)
}

// ListTabs returns the open page targets, most recently activated first.
func (b *Browser) ListTabs(ctx context.Context) ([]*Tab, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return DiscoverTabs(ctx, b.port)
}

// Cookies returns every cookie in the default browser context whose domain is
// visible to host. It talks to the browser endpoint directly, so no tab is
// attached, created or closed.
func (b *Browser) Cookies(ctx context.Context, host string) ([]*network.Cookie, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	info, err := DiscoverBrowserInfo(ctx, b.port)
	if err != nil {
		return nil, fmt.Errorf("failed to get browser info: %w", err)
	}

	// The connection is torn down when ctx is cancelled.
	sugar := b.log.Sugar()
	conn, err := chromedp.NewBrowser(ctx, info.WebSocketDebuggerURL,
		chromedp.WithBrowserLogf(sugar.Debugf),
		chromedp.WithBrowserErrorf(sugar.Warnf))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	all, err := storage.GetCookies().Do(cdpproto.WithExecutor(ctx, conn))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	visible := make([]*network.Cookie, 0, len(all))
	for _, c := range all {
		if cookies.MatchesHost(host, c.Domain) {
			visible = append(visible, c)
		}
	}

	b.log.Debug("read browser cookies",
		zap.String("host", host),
		zap.Int("total", len(all)),
		zap.Int("visible", len(visible)))
	return visible, nil
}
