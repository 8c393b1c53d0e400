// Package errors provides structured error types for the collate core.
// These errors provide context about what operation failed and where,
// so the caller can show the offending source location to the user.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindPathNotFound
	KindMixedKind
	KindUserCancelled
	KindClassifier
	KindPluginPipeline
	KindWatchSubscription
	KindTempFileCleanup
	KindInvalid
	KindIO
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindPathNotFound:
		return "path not found"
	case KindMixedKind:
		return "mixed comparison kinds"
	case KindUserCancelled:
		return "cancelled by user"
	case KindClassifier:
		return "classifier failure"
	case KindPluginPipeline:
		return "plugin pipeline failure"
	case KindWatchSubscription:
		return "watch subscription failure"
	case KindTempFileCleanup:
		return "temp file cleanup failure"
	case KindInvalid:
		return "invalid"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "configuration error"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for collate.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context, usually the offending location
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Dispatch errors

func PathNotFound(location string) error {
	return E(Op("dispatch.Dispatch"), KindPathNotFound, fmt.Sprintf("source %s does not exist", location))
}

func MixedKinds(locations []string) error {
	return E(Op("dispatch.Dispatch"), KindMixedKind, fmt.Sprintf("sources %v resolve to different comparison kinds", locations))
}

func UserCancelled(location string) error {
	return E(Op("dispatch.Dispatch"), KindUserCancelled, fmt.Sprintf("open of %s declined", location))
}

func ClassifierFailed(location string, err error) error {
	return E(Op("classify.ClassifyKind"), KindClassifier, fmt.Sprintf("failed to classify %s", location), err)
}

// Plugin errors

func PluginLoadFailed(path string, err error) error {
	return E(Op("plugin.Load"), KindPluginPipeline, fmt.Sprintf("failed to load pipeline manifest %s", path), err)
}

func PluginInvalid(path string, reason string) error {
	return E(Op("plugin.Load"), KindPluginPipeline, fmt.Sprintf("%s: %s", path, reason))
}

// Watch errors

func WatchFailed(path string, err error) error {
	return E(Op("watch.Watch"), KindWatchSubscription, fmt.Sprintf("failed to watch %s", path), err)
}

// Ledger errors

func TempFileCleanupFailed(path string, err error) error {
	return E(Op("ledger.Release"), KindTempFileCleanup, fmt.Sprintf("failed to delete temp file %s", path), err)
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}
