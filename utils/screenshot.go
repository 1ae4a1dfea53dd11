package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Screenshotter is anything that can save a full page screenshot to path
type Screenshotter interface {
	Screenshot(path string) error
}

// ScreenShotDebugger saves screenshots when an interaction fails
type ScreenShotDebugger struct {
	outputDir string
	logger    *log.Logger
}

// NewScreenShotDebugger returns nil when dir is empty, a nil debugger is a no-op
func NewScreenShotDebugger(dir string, logger *log.Logger) *ScreenShotDebugger {
	if dir == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("⚠️ Failed to create screenshot directory", "dir", dir, "err", err)
		return nil
	}
	return &ScreenShotDebugger{
		outputDir: dir,
		logger:    logger,
	}
}

func (s *ScreenShotDebugger) CaptureAndLog(target Screenshotter, name, message string) (string, error) {
	if s == nil || target == nil {
		return "", nil
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", slug(name), timestamp)
	path := filepath.Join(s.outputDir, filename)
	s.logger.Info("📸 "+message, "file", path)

	if err := target.Screenshot(path); err != nil {
		s.logger.Warn("⚠️ Failed to capture screenshot", "err", err)
		return "", err
	}
	return path, nil
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, name)
}
