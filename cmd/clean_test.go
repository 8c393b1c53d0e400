package cmd

import (
	"io"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"lowercase y", "y\n", true},
		{"uppercase Y", "Y\n", true},
		{"lowercase yes", "yes\n", true},
		{"uppercase YES", "YES\n", true},
		{"mixed case Yes", "Yes\n", true},
		{"lowercase n", "n\n", false},
		{"lowercase no", "no\n", false},
		{"empty input", "\n", false},
		{"random text", "maybe\n", false},
		{"y with spaces", "  y  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.input)
			result := confirm(reader, "Test?")
			if result != tt.expected {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestConfirm_EOF(t *testing.T) {
	reader := strings.NewReader("")
	if confirm(reader, "Test?") {
		t.Error("confirm(EOF) = true, want false")
	}
}

func TestConfirm_ErrorReader(t *testing.T) {
	if confirm(&errorReader{}, "Test?") {
		t.Error("confirm(error) = true, want false")
	}
}

func TestRunCleanDeclined(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	origSkip := skipConfirm
	defer func() { skipConfirm = origSkip }()
	skipConfirm = false

	// "n" aborts without touching the config.
	if err := runCleanWithReader(strings.NewReader("n\n")); err != nil {
		t.Errorf("declined clean should not error: %v", err)
	}
}

func TestRunCleanConfirmed(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	origSkip := skipConfirm
	defer func() { skipConfirm = origSkip }()
	skipConfirm = true

	if err := runCleanWithReader(strings.NewReader("")); err != nil {
		t.Errorf("clean with --yes should not error: %v", err)
	}
}

// errorReader is a reader that always returns an error
type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}
