// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and
// Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"collate/internal/logger"
)

// notifyFunc is swapped in tests.
var notifyFunc = beeep.Notify

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	logger.Log("Notification: Sending notification - title=%q, message=%q", title, message)
	// Use empty string for icon - beeep handles platform defaults
	err := notifyFunc(title, message, "")
	if err != nil {
		logger.Log("Notification: Failed to send notification: %v", err)
	}
	return err
}

// CompareReady sends a notification that a comparison finished loading.
func CompareReady(name string) error {
	return Send("Collate", name+" is ready")
}
