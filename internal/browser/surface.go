package browser

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go-careers-agent/internal/resolver"
	"go-careers-agent/internal/sanitizer"
	"go-careers-agent/utils"

	"github.com/charmbracelet/log"
)

// LocatorResolver turns a natural language description into a selector
type LocatorResolver interface {
	ResolveLocator(ctx context.Context, markup, description string) (resolver.Locator, error)
}

type SurfaceOptions struct {
	// Settle is the pause after navigation and clicks
	Settle time.Duration
	// SubmitSettle is the pause after a fill and its Enter press
	SubmitSettle time.Duration
	// Scroll after navigation to trigger lazily loaded listings
	Scroll bool
}

func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Settle:       time.Second,
		SubmitSettle: 2 * time.Second,
	}
}

// Surface owns the single browsing context the agent works in.
// Switching into an iframe replaces the current frame, it is never stacked.
//
// Every operation returns the observation text. A non-nil error means the operation
// failed and the text already describes it.
type Surface struct {
	main     Frame
	current  Frame
	locator  LocatorResolver
	frames   *FrameLocator
	opts     SurfaceOptions
	debugger *utils.ScreenShotDebugger
	closer   io.Closer
	logger   *log.Logger
}

// NewSurface builds a surface over the page's main frame. closer (usually the
// PlaywrightManager) is closed by Close and may be nil.
func NewSurface(main Frame, locator LocatorResolver, frames *FrameLocator, opts SurfaceOptions, debugger *utils.ScreenShotDebugger, closer io.Closer, logger *log.Logger) *Surface {
	if logger == nil {
		logger = log.Default()
	}
	return &Surface{
		main:     main,
		current:  main,
		locator:  locator,
		frames:   frames,
		opts:     opts,
		debugger: debugger,
		closer:   closer,
		logger:   logger.With("component", "browser"),
	}
}

// NormalizeURL adds https:// to scheme-less input
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}

func (s *Surface) Navigate(ctx context.Context, url string) (msg string, err error) {
	defer s.guard("Navigation failed", &msg, &err)

	url = NormalizeURL(url)
	s.logger.Info("🌐 Navigating", "url", url)
	resolved, err := s.current.Goto(url)
	if err != nil {
		s.capture("navigation failed", err)
		return fmt.Sprintf("Navigation failed: %v", err), err
	}
	if err := utils.Settle(ctx, s.opts.Settle); err != nil {
		return fmt.Sprintf("Navigation failed: %v", err), err
	}
	if s.opts.Scroll {
		utils.SmoothScroll(ctx, s.current, s.opts.Settle/2)
	}
	return fmt.Sprintf("Navigated to %s", resolved), nil
}

// Content returns the sanitized markup of the current context
func (s *Surface) Content(ctx context.Context) (msg string, err error) {
	defer s.guard("Error", &msg, &err)

	raw, err := s.current.Content()
	if err != nil {
		return fmt.Sprintf("Error: %v", err), err
	}
	return sanitizer.Clean(raw), nil
}

// RawContent returns the unsanitized markup for the resolver, which sanitizes with its own budget
func (s *Surface) RawContent() (string, error) {
	return s.current.Content()
}

func (s *Surface) Click(ctx context.Context, description string) (msg string, err error) {
	defer s.guard("Click failed", &msg, &err)

	selector, err := s.resolve(ctx, description)
	if err != nil {
		return fmt.Sprintf("Click failed: %v", err), err
	}
	s.logger.Info("🖱️ Clicking", "description", description, "selector", selector)
	if err := s.current.Click(selector); err != nil {
		s.capture("click failed: "+description, err)
		return fmt.Sprintf("Click failed: %v", err), err
	}
	if err := utils.Settle(ctx, s.opts.Settle); err != nil {
		return fmt.Sprintf("Click failed: %v", err), err
	}
	return fmt.Sprintf("Clicked: %s. New URL: %s", description, s.current.URL()), nil
}

func (s *Surface) Fill(ctx context.Context, description, value string) (msg string, err error) {
	defer s.guard("Fill failed", &msg, &err)

	selector, err := s.resolve(ctx, description)
	if err != nil {
		return fmt.Sprintf("Fill failed: %v", err), err
	}
	s.logger.Info("⌨️ Filling", "description", description, "selector", selector)
	if err := s.current.Fill(selector, value); err != nil {
		s.capture("fill failed: "+description, err)
		return fmt.Sprintf("Fill failed: %v", err), err
	}
	//submitting is best effort, plenty of inputs filter as you type
	if err := s.current.Press(selector, "Enter"); err != nil {
		s.logger.Debug("enter press ignored", "err", err)
	}
	if err := utils.Settle(ctx, s.opts.SubmitSettle); err != nil {
		return fmt.Sprintf("Fill failed: %v", err), err
	}
	return fmt.Sprintf("Filled '%s' with '%s'", description, value), nil
}

// SwitchToJobFrame replaces the current context with the first iframe holding job listings
func (s *Surface) SwitchToJobFrame(ctx context.Context) (msg string, err error) {
	defer s.guard("Error", &msg, &err)

	frame, index, msg := s.frames.Locate(ctx, s.current)
	if frame == nil {
		return msg, nil
	}
	s.current = frame
	s.logger.Info("🔀 Switched browsing context", "iframe", index)
	return msg, nil
}

// Reset goes back to the page's main frame
func (s *Surface) Reset() {
	s.current = s.main
}

func (s *Surface) URL() string {
	if s.current == nil {
		return ""
	}
	return s.current.URL()
}

// Close tears the browser down. Safe to call more than once.
func (s *Surface) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	s.logger.Info("🧹 Closing browser")
	return c.Close()
}

func (s *Surface) resolve(ctx context.Context, description string) (string, error) {
	raw, err := s.current.Content()
	if err != nil {
		return "", err
	}
	loc, err := s.locator.ResolveLocator(ctx, raw, description)
	if err != nil {
		return "", err
	}
	return loc.Selector, nil
}

func (s *Surface) capture(name string, cause error) {
	if s.debugger == nil {
		return
	}
	_, _ = s.debugger.CaptureAndLog(s.current, name, cause.Error())
}

// guard turns a panic inside an operation into a failure observation
func (s *Surface) guard(prefix string, msg *string, err *error) {
	if r := recover(); r != nil {
		s.logger.Error("❌ Recovered browser panic", "panic", r)
		*err = fmt.Errorf("panic: %v", r)
		*msg = fmt.Sprintf("%s: %v", prefix, *err)
	}
}
