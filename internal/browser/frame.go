package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Frame is the browsing context the agent works in: a page's main frame or an iframe.
// It is the only surface of the browser driver the rest of the code sees.
type Frame interface {
	// Goto navigates and waits for DOMContentLoaded, returning the resolved URL
	Goto(url string) (string, error)
	Content() (string, error)
	Click(selector string) error
	Fill(selector, value string) error
	Press(selector, key string) error
	Evaluate(script string) error
	URL() string
	// IFrames lists the iframe elements in document order; entries whose
	// content frame cannot be resolved are nil so indexes stay stable
	IFrames() ([]Frame, error)
	Screenshot(path string) error
}

type playwrightFrame struct {
	frame playwright.Frame
}

// NewFrame wraps a playwright frame (use page.MainFrame() for a page)
func NewFrame(f playwright.Frame) Frame {
	return &playwrightFrame{frame: f}
}

func (f *playwrightFrame) Goto(url string) (string, error) {
	if _, err := f.frame.Goto(url, playwright.FrameGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", err
	}
	return f.frame.URL(), nil
}

func (f *playwrightFrame) Content() (string, error) {
	return f.frame.Content()
}

func (f *playwrightFrame) Click(selector string) error {
	return f.frame.Click(selector)
}

func (f *playwrightFrame) Fill(selector, value string) error {
	return f.frame.Fill(selector, value)
}

func (f *playwrightFrame) Press(selector, key string) error {
	return f.frame.Press(selector, key)
}

func (f *playwrightFrame) Evaluate(script string) error {
	_, err := f.frame.Evaluate(script)
	return err
}

func (f *playwrightFrame) URL() string {
	return f.frame.URL()
}

func (f *playwrightFrame) IFrames() ([]Frame, error) {
	handles, err := f.frame.QuerySelectorAll("iframe")
	if err != nil {
		return nil, fmt.Errorf("failed to list iframes: %w", err)
	}
	frames := make([]Frame, len(handles))
	for i, h := range handles {
		cf, err := h.ContentFrame()
		if err != nil || cf == nil {
			continue
		}
		frames[i] = &playwrightFrame{frame: cf}
	}
	return frames, nil
}

// Screenshot captures the whole page the frame belongs to
func (f *playwrightFrame) Screenshot(path string) error {
	_, err := f.frame.Page().Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}
