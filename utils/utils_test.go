package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasWord(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"YES", true},
		{"Yes, this frame lists 12 open positions.", true},
		{"**yes**", true},
		{"NO", false},
		{"The eyes of the team", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasWord(tt.text, "yes"), tt.text)
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "ho chi minh", NormalizeText("Hồ Chí Minh"))
	assert.Equal(t, "zurich", NormalizeText("Zürich"))
}

func TestCleanInput(t *testing.T) {
	assert.Equal(t, "Zürich", CleanInput("  Zürich \n"))
}

func TestRandomDelay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, RandomDelay(ctx, time.Hour, 2*time.Hour), context.Canceled)
	assert.ErrorIs(t, RandomDelay(ctx, 0, 0), context.Canceled)
	assert.NoError(t, RandomDelay(context.Background(), 0, 0))
}

type recordingEvaluator struct {
	scripts []string
}

func (r *recordingEvaluator) Evaluate(script string) error {
	r.scripts = append(r.scripts, script)
	return nil
}

func TestSmoothScroll(t *testing.T) {
	ev := &recordingEvaluator{}
	SmoothScroll(context.Background(), ev, 0)
	require.Len(t, ev.scripts, 3)
	assert.Contains(t, ev.scripts[2], "scrollHeight")
}

type fakeShot struct {
	err error
}

func (f fakeShot) Screenshot(path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

func TestScreenShotDebugger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	d := NewScreenShotDebugger(dir, nil)
	require.NotNil(t, d)

	path, err := d.CaptureAndLog(fakeShot{}, "Click failed: apply", "click failed")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "click-failed--apply_")

	_, err = d.CaptureAndLog(fakeShot{err: errors.New("closed")}, "x", "x")
	assert.Error(t, err)
}

func TestScreenShotDebugger_NilIsNoop(t *testing.T) {
	var d *ScreenShotDebugger
	assert.Nil(t, NewScreenShotDebugger("", nil))
	path, err := d.CaptureAndLog(fakeShot{}, "x", "x")
	assert.NoError(t, err)
	assert.Empty(t, path)
}
