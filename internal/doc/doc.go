// Package doc defines the frame/document kinds and document identity
// shared across the comparison core.
package doc

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the frame/document type backing a comparison.
type Kind int

const (
	// KindOther is the zero value: no concrete frame resolved yet.
	KindOther Kind = iota
	// KindFolder is a folder compare frame.
	KindFolder
	// KindFile is a plain-text file compare frame.
	KindFile
	// KindTable is a tabular (CSV/TSV) compare frame. Table documents
	// share the file collection in the registry.
	KindTable
	// KindHex is a binary/hex compare frame.
	KindHex
	// KindImage is an image compare frame.
	KindImage
	// KindWebPage is a web page compare frame.
	KindWebPage
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	case KindTable:
		return "table"
	case KindHex:
		return "hex"
	case KindImage:
		return "image"
	case KindWebPage:
		return "webpage"
	default:
		return "other"
	}
}

// Bucket returns the registry collection a document of this kind lives
// in. Text and table documents share the file collection; everything
// else maps to itself.
func (k Kind) Bucket() Kind {
	if k == KindTable {
		return KindFile
	}
	return k
}

// Flags is the per-item open flag set.
type Flags uint32

const (
	// FlagReadOnly opens the pane read-only.
	FlagReadOnly Flags = 1 << iota
	// FlagBinaryHint resolves an unclassified open as a hex frame
	// without consulting the classifier.
	FlagBinaryHint
)

// NormalizeLocation converts a source path into its canonical identity
// form used for registry lookup: absolute, cleaned, with trailing
// separators removed. Non-path identities (clipboard buffers, scratch
// panes) are passed through unchanged.
func NormalizeLocation(loc string) string {
	if loc == "" || strings.HasPrefix(loc, "clipboard:") || strings.HasPrefix(loc, "untitled:") {
		return loc
	}
	abs, err := filepath.Abs(loc)
	if err != nil {
		return filepath.Clean(loc)
	}
	return filepath.Clean(abs)
}

// LocationKey builds the identity key for an ordered set of source
// locations. Reuse lookup ("self-compare", re-focus) is keyed on this,
// not on file content.
func LocationKey(locations []string) string {
	normalized := make([]string, len(locations))
	for i, loc := range locations {
		normalized[i] = NormalizeLocation(loc)
	}
	return strings.Join(normalized, "\x00")
}

// Document is one live comparison document. It owns its source
// locations, the directory paths it watches, and the temp files it
// requested; those are reclaimed when the owning frame closes.
type Document struct {
	ID           string
	Kind         Kind
	Locations    []string
	Descriptions []string
	Flags        []Flags
	ReportPath   string
	CreatedAt    time.Time
}

// New creates a document with a fresh identity for the given kind and
// source locations. Locations are stored normalized.
func New(kind Kind, locations []string) *Document {
	normalized := make([]string, len(locations))
	for i, loc := range locations {
		normalized[i] = NormalizeLocation(loc)
	}
	return &Document{
		ID:        uuid.New().String(),
		Kind:      kind,
		Locations: normalized,
		CreatedAt: time.Now(),
	}
}

// Key returns the identity key of the document's source locations.
func (d *Document) Key() string {
	return LocationKey(d.Locations)
}

// WatchablePaths returns the directories that should be watched for
// this document: the parent directory of each file-backed location, or
// the folder itself for folder compares. Non-path locations yield
// nothing.
func (d *Document) WatchablePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, loc := range d.Locations {
		if strings.HasPrefix(loc, "clipboard:") || strings.HasPrefix(loc, "untitled:") || loc == "" {
			continue
		}
		p := loc
		if d.Kind != KindFolder {
			p = filepath.Dir(loc)
		}
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}
