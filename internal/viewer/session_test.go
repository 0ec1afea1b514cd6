package viewer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glance/internal/config"
)

func sessionViewer(t *testing.T) *Viewer {
	t.Helper()
	dir := t.TempDir()
	writeImages(t, dir, map[string]bool{"1.png": true, "2.png": true, "3.png": true})
	cfg := testConfig()
	v := New(cfg, nil)
	t.Cleanup(v.Close)
	require.Equal(t, 3, v.Scan(dir))
	return v
}

func runSession(t *testing.T, v *Viewer, script string) string {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(v, strings.NewReader(script), &out)
	err := s.Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestSessionNavigation(t *testing.T) {
	v := sessionViewer(t)
	out := runSession(t, v, "n\np\ng 3\ni\ns\nq\n")

	assert.Contains(t, out, "[1/3]")
	assert.Contains(t, out, "[2/3]")
	assert.Contains(t, out, "[3/3]")
	assert.Contains(t, out, "1 frame(s)")
	assert.Contains(t, out, "listed 3")
	info, ok := v.CurrentInfo()
	require.True(t, ok)
	assert.Equal(t, 3, info.Ordinal)
}

func TestSessionBadCommand(t *testing.T) {
	v := sessionViewer(t)
	out := runSession(t, v, "zap\nq\n")
	assert.Contains(t, out, `unknown command "zap"`)
}

func TestSessionJumpValidation(t *testing.T) {
	v := sessionViewer(t)
	out := runSession(t, v, "j\nj notanumber\nj 1\ng 0\nq\n")
	assert.Contains(t, out, "usage: j <distance>")
	assert.Contains(t, out, `bad distance "notanumber"`)
	assert.Contains(t, out, "[2/3]")
	assert.Contains(t, out, "out of range", "a bad ordinal is a command error, not exhaustion")
	assert.NotContains(t, out, "no viewable images remain")
}

func TestAdvancePauseResume(t *testing.T) {
	v := sessionViewer(t)
	a := v.NewAdvance()

	assert.True(t, a.IsPaused(), "advance starts paused")
	a.TogglePlayPause()
	assert.False(t, a.IsPaused())

	// a temporary operation pause remembers the playing state
	a.PauseForOperation()
	assert.True(t, a.IsPaused())
	a.ResumeAfterOperation()
	assert.False(t, a.IsPaused())

	// but does not resume if it was already paused beforehand
	a.SetPaused(true)
	a.PauseForOperation()
	a.ResumeAfterOperation()
	assert.True(t, a.IsPaused())
}

func TestAdvanceRunTicks(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, map[string]bool{"1.png": true, "2.png": true})
	cfg := config.Default()
	cfg.Loop = true
	cfg.PreloadCap = 0
	cfg.SlideInterval = 10 * time.Millisecond
	v := New(cfg, nil)
	defer v.Close()
	require.Equal(t, 2, v.Scan(dir))
	_, err := v.First()
	require.NoError(t, err)

	a := v.NewAdvance()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	a.SetPaused(false)

	// with two images and loop on, any advance decodes the second image
	deadline := time.Now().Add(2 * time.Second)
	for v.Stats().Decodes < 2 {
		if time.Now().After(deadline) {
			t.Fatal("auto-advance never moved the current image")
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, v.Current())
}
