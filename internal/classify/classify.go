// Package classify resolves the effective frame kind for a set of
// source locations. The dispatcher consumes the Classifier interface;
// the Sniffer here is the default implementation, combining extension
// tables with a binary content sniff.
package classify

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"collate/internal/doc"
	"collate/internal/errors"
)

// Classifier decides which frame kind should present a comparison.
type Classifier interface {
	ClassifyKind(locations []string) (doc.Kind, error)
}

// sniffLen bounds how much of a file the binary sniff reads.
const sniffLen = 8 * 1024

var (
	tableExts = map[string]bool{".csv": true, ".tsv": true}
	imageExts = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".bmp": true, ".webp": true, ".ico": true,
	}
	webExts = map[string]bool{".html": true, ".htm": true, ".mht": true, ".xhtml": true}
)

// Sniffer is the default content/extension classifier.
type Sniffer struct{}

// ClassifyKind resolves one kind for the whole location set. Folders
// win over everything; otherwise the first file's classification is
// authoritative and the rest must agree.
func (Sniffer) ClassifyKind(locations []string) (doc.Kind, error) {
	resolved := doc.KindOther
	for _, loc := range locations {
		k, err := classifyOne(loc)
		if err != nil {
			return doc.KindOther, err
		}
		if resolved == doc.KindOther {
			resolved = k
			continue
		}
		if k != resolved {
			return doc.KindOther, errors.MixedKinds(locations)
		}
	}
	if resolved == doc.KindOther {
		resolved = doc.KindFile
	}
	return resolved, nil
}

func classifyOne(loc string) (doc.Kind, error) {
	if strings.HasPrefix(loc, "clipboard:") || strings.HasPrefix(loc, "untitled:") {
		return doc.KindFile, nil
	}

	info, err := os.Stat(loc)
	if err != nil {
		return doc.KindOther, errors.ClassifierFailed(loc, err)
	}
	if info.IsDir() {
		return doc.KindFolder, nil
	}

	ext := strings.ToLower(filepath.Ext(loc))
	switch {
	case tableExts[ext]:
		return doc.KindTable, nil
	case imageExts[ext]:
		return doc.KindImage, nil
	case webExts[ext]:
		return doc.KindWebPage, nil
	}

	binary, err := sniffBinary(loc)
	if err != nil {
		return doc.KindOther, errors.ClassifierFailed(loc, err)
	}
	if binary {
		return doc.KindHex, nil
	}
	return doc.KindFile, nil
}

// sniffBinary reports whether the file looks binary: a NUL byte in the
// first 8 KiB.
func sniffBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}
