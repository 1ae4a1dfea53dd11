package browser

import (
	"context"
	"fmt"

	"go-careers-agent/internal/sanitizer"
	"go-careers-agent/utils"

	"github.com/charmbracelet/log"
)

const jobFrameQuestion = "Does this frame contain job postings? Respond YES or NO."

// Answerer answers a free text question about some content
type Answerer interface {
	AnswerQuestion(ctx context.Context, content, question string) string
}

// FrameLocator finds the iframe that holds the job listings, if any
type FrameLocator struct {
	answerer Answerer
	logger   *log.Logger
}

func NewFrameLocator(answerer Answerer, logger *log.Logger) *FrameLocator {
	if logger == nil {
		logger = log.Default()
	}
	return &FrameLocator{answerer: answerer, logger: logger.With("component", "iframe")}
}

// Locate asks about each iframe of current in document order and stops at the first YES.
// It returns the matched frame and its index, or nil and -1, plus the observation text.
func (l *FrameLocator) Locate(ctx context.Context, current Frame) (Frame, int, string) {
	frames, err := current.IFrames()
	if err != nil {
		return nil, -1, fmt.Sprintf("Error: %v", err)
	}
	if len(frames) == 0 {
		return nil, -1, "No iframes found"
	}

	l.logger.Info("🔎 Checking iframes for job listings", "count", len(frames))
	for i, f := range frames {
		if ctx.Err() != nil {
			return nil, -1, fmt.Sprintf("Error: %v", ctx.Err())
		}
		if f == nil {
			continue
		}
		content, err := f.Content()
		if err != nil {
			l.logger.Debug("skipping unreadable iframe", "index", i, "err", err)
			continue
		}

		answer := l.answerer.AnswerQuestion(ctx, sanitizer.Clean(content), jobFrameQuestion)
		if utils.HasWord(answer, "yes") {
			l.logger.Info("✅ Found job listings iframe", "index", i, "url", f.URL())
			return f, i, fmt.Sprintf("Switched to iframe %d with job listings", i)
		}
	}
	return nil, -1, "No iframe with job listings found"
}
