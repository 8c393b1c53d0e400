// Package clipboard captures text buffers from the system clipboard for
// clipboard comparison. Since the OS only exposes the current buffer,
// the package keeps an in-process history ring: every Capture of new
// content becomes one buffer, and an N-buffer compare draws from the
// most recent N captures.
package clipboard

import (
	"bytes"
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"collate/internal/logger"
)

// HistorySize bounds the in-process capture ring.
const HistorySize = 8

// initialized tracks whether the clipboard has been initialized
var initialized bool

var (
	mu      sync.Mutex
	history [][]byte // most recent last
)

// Init initializes the clipboard. Must be called before other functions.
// This is safe to call multiple times.
func Init() error {
	if initialized {
		return nil
	}

	if err := clipboard.Init(); err != nil {
		logger.Log("Clipboard: Failed to initialize: %v", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	initialized = true
	logger.Log("Clipboard: Initialized successfully")
	return nil
}

// Capture reads the current clipboard text and appends it to the
// history ring if it differs from the newest capture. Returns true when
// a new buffer was recorded.
func Capture() (bool, error) {
	if !initialized {
		if err := Init(); err != nil {
			return false, err
		}
	}

	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return false, nil
	}

	mu.Lock()
	defer mu.Unlock()
	if len(history) > 0 && bytes.Equal(history[len(history)-1], data) {
		return false, nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	history = append(history, buf)
	if len(history) > HistorySize {
		history = history[1:]
	}
	logger.Debug("Clipboard: captured buffer #%d (%d bytes)", len(history), len(buf))
	return true, nil
}

// Buffers returns the n most recent captured buffers, newest first. A
// Capture is attempted first so the current clipboard content is always
// buffer zero.
func Buffers(n int) ([][]byte, error) {
	if _, err := Capture(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if len(history) < n {
		return nil, fmt.Errorf("clipboard history has %d buffer(s), need %d", len(history), n)
	}
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = history[len(history)-1-i]
	}
	return out, nil
}

// ClearHistory drops the capture ring. Used by tests and session
// teardown.
func ClearHistory() {
	mu.Lock()
	defer mu.Unlock()
	history = nil
}

// seed injects a buffer without touching the OS clipboard. Test hook.
func seed(data []byte) {
	mu.Lock()
	defer mu.Unlock()
	history = append(history, data)
}
