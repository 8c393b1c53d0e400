// Package ledger tracks ephemeral files created to service comparison
// sessions and guarantees their cleanup. Every entry's path is deleted
// exactly once: on explicit release or on owning-document destruction,
// never both. Deletion failures are logged and swallowed so a missing
// or locked temp file can never abort a document close.
//
// The ledger is owned by the main-loop orchestrator and must only be
// mutated from that goroutine.
package ledger

import (
	"os"

	"collate/internal/errors"
	"collate/internal/logger"
)

// Entry records one temp file: who owns it, where it lives, and why it
// was created.
type Entry struct {
	DocID  string
	Path   string
	Reason string
}

// Ledger is the bookkeeping structure for session temp files.
type Ledger struct {
	entries []Entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Register records a temp file for the owning document.
func (l *Ledger) Register(docID, path, reason string) {
	l.entries = append(l.entries, Entry{DocID: docID, Path: path, Reason: reason})
	logger.Debug("Ledger: registered %s for doc=%s (%s)", path, docID, reason)
}

// CreateTemp creates a temp file with the given content, registers it
// for the owning document, and returns its path.
func (l *Ledger) CreateTemp(docID, pattern, reason string, data []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", errors.E(errors.Op("ledger.CreateTemp"), errors.KindIO, pattern, err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.E(errors.Op("ledger.CreateTemp"), errors.KindIO, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.E(errors.Op("ledger.CreateTemp"), errors.KindIO, path, err)
	}
	l.Register(docID, path, reason)
	return path, nil
}

// Entries returns the entries owned by a document.
func (l *Ledger) Entries(docID string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.DocID == docID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of live entries.
func (l *Ledger) Len() int { return len(l.entries) }

// ReleaseDoc deletes and forgets every entry owned by the document.
// Called from document-registry removal.
func (l *Ledger) ReleaseDoc(docID string) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.DocID != docID {
			kept = append(kept, e)
			continue
		}
		l.delete(e)
	}
	l.entries = kept
}

// ReleaseAll deletes and forgets every entry. Called at session
// teardown.
func (l *Ledger) ReleaseAll() {
	for _, e := range l.entries {
		l.delete(e)
	}
	l.entries = nil
}

func (l *Ledger) delete(e Entry) {
	if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
		// Best effort only. Cleanup failure must not block close.
		logger.Warn("Ledger: %v", errors.TempFileCleanupFailed(e.Path, err))
		return
	}
	logger.Debug("Ledger: released %s (doc=%s)", e.Path, e.DocID)
}
