package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless       bool
	SlowMo         time.Duration
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

func DefaultOptions() Options {
	return Options{
		Headless:       false,
		SlowMo:         100 * time.Millisecond,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		ViewportWidth:  1600,
		ViewportHeight: 900,
	}
}

// PlaywrightManager owns the driver, browser, context and page of one run
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
	logger  *log.Logger
}

func NewPlaywright(opts Options, logger *log.Logger) (*PlaywrightManager, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Info("🌐 Initializing browser", "headless", opts.Headless)

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
		Args:     []string{"--no-sandbox"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	return &PlaywrightManager{
		pw:      pw,
		browser: browser,
		opts:    opts,
		logger:  logger,
	}, nil
}

// NewContext creates the single browser context of the run, preloaded with cookies
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  pm.opts.ViewportWidth,
			Height: pm.opts.ViewportHeight,
		},
	}
	if pm.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(pm.opts.UserAgent)
	}

	browserCtx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			pm.logger.Warn("⚠️ Could not add cookies, continuing", "err", err)
		}
	}
	pm.context = browserCtx
	return browserCtx, nil
}

// NewPage opens the page the agent drives and returns its main frame
func (pm *PlaywrightManager) NewPage() (Frame, error) {
	if pm.context == nil {
		if _, err := pm.NewContext(nil); err != nil {
			return nil, err
		}
	}
	page, err := pm.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(float64(pm.opts.Timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(pm.opts.Timeout.Milliseconds()))
	pm.page = page
	pm.logger.Info("✅ Browser ready")
	return NewFrame(page.MainFrame()), nil
}

// Close tears down page, context, browser and driver, in that order, even if one step fails
func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.page != nil {
		errs = append(errs, pm.page.Close())
	}
	if pm.context != nil {
		errs = append(errs, pm.context.Close())
	}
	if pm.browser != nil {
		errs = append(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = append(errs, pm.pw.Stop())
	}
	err := errors.Join(errs...)
	if err != nil {
		pm.logger.Error("❌ Cleanup error", "err", err)
	}
	return err
}
