package ui

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards the buffer shared with the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Fetching nodes")
	assert.Equal(t, "Fetching nodes", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
}

func TestSpinnerStartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner("Test")
	s.SetOutput(&out)

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Equal(t, SpinnerInProgress, s.State(), "Stop does not change state")
	assert.Contains(t, out.String(), "Test...")

	// Stopping twice is harmless.
	s.Stop()
}

func TestSpinnerSuccessAndFail(t *testing.T) {
	var out syncBuffer
	ok := NewSpinner("Loading fleet")
	ok.SetOutput(&out)
	ok.Start()
	ok.Success()
	assert.Equal(t, SpinnerSuccess, ok.State())
	assert.Contains(t, out.String(), SymbolSuccess+" Loading fleet")

	var failOut syncBuffer
	bad := NewSpinner("Loading node")
	bad.SetOutput(&failOut)
	bad.Start()
	bad.Fail()
	assert.Equal(t, SpinnerFailed, bad.State())
	assert.Contains(t, failOut.String(), SymbolFail+" Loading node")
}

func TestWithSpinner_Disabled(t *testing.T) {
	called := false
	err := WithSpinner(false, "quiet", func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	assert.Equal(t, boom, WithSpinner(false, "quiet", func() error { return boom }))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}
