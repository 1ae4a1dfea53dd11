// Package browsertest provides an in-memory browser.Frame for tests.
package browsertest

import (
	"errors"

	"go-careers-agent/internal/browser"
)

// Frame is a scripted browsing context. Pages maps URLs to the markup served after Goto.
type Frame struct {
	Name       string
	HTML       string
	CurrentURL string
	Pages      map[string]string
	Children   []browser.Frame

	GotoErr     error
	ContentErr  error
	ClickErr    error
	FillErr     error
	PressErr    error
	IFramesErr  error
	PanicOnGoto bool

	Visits       []string
	Clicks       []string
	Fills        map[string]string
	Presses      []string
	Scripts      []string
	ContentCalls int
	Shots        []string
}

func New(name, html string) *Frame {
	return &Frame{Name: name, HTML: html, CurrentURL: "about:blank"}
}

func (f *Frame) Goto(url string) (string, error) {
	if f.PanicOnGoto {
		panic("target closed")
	}
	f.Visits = append(f.Visits, url)
	if f.GotoErr != nil {
		return "", f.GotoErr
	}
	f.CurrentURL = url
	if html, ok := f.Pages[url]; ok {
		f.HTML = html
	}
	return url, nil
}

func (f *Frame) Content() (string, error) {
	f.ContentCalls++
	if f.ContentErr != nil {
		return "", f.ContentErr
	}
	return f.HTML, nil
}

func (f *Frame) Click(selector string) error {
	f.Clicks = append(f.Clicks, selector)
	return f.ClickErr
}

func (f *Frame) Fill(selector, value string) error {
	if f.FillErr != nil {
		return f.FillErr
	}
	if f.Fills == nil {
		f.Fills = map[string]string{}
	}
	f.Fills[selector] = value
	return nil
}

func (f *Frame) Press(selector, key string) error {
	f.Presses = append(f.Presses, selector+":"+key)
	return f.PressErr
}

func (f *Frame) Evaluate(script string) error {
	f.Scripts = append(f.Scripts, script)
	return nil
}

func (f *Frame) URL() string {
	return f.CurrentURL
}

func (f *Frame) IFrames() ([]browser.Frame, error) {
	return f.Children, f.IFramesErr
}

func (f *Frame) Screenshot(path string) error {
	f.Shots = append(f.Shots, path)
	return errors.New("screenshots are not supported by browsertest.Frame")
}

var _ browser.Frame = (*Frame)(nil)
