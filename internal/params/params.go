// Package params defines the open-request parameter model.
//
// A record is a tagged variant rather than a struct hierarchy:
// construction functions take only the fields legal for the requested
// kind, and capability accessors report absence explicitly. The auto
// union carries a single save-as path that serves whichever kind the
// classifier resolves.
package params

import "collate/internal/doc"

// RecordKind is the declared kind of an OpenParams record.
type RecordKind int

const (
	// KindNone is the zero value: a request with no mode options.
	KindNone RecordKind = iota
	KindText
	KindTable
	KindBinary
	KindImage
	KindWeb
	KindFolder
	// KindAuto exposes the union of table, binary and image options.
	// The concrete kind is resolved by the classifier before any
	// mode-specific field is consulted.
	KindAuto
)

// Unspecified marks an int option the caller did not set.
const Unspecified = -1

// TextOptions are the options legal for a text compare.
type TextOptions struct {
	StartLine   int    // first line to move the caret to, Unspecified if unset
	StartColumn int    // first column to move the caret to, Unspecified if unset
	FileExt     string // extension hint for syntax handling
	SaveAsPath  string // "3rd path" where output is saved if given
}

// TableOptions are the options legal for a tabular compare. A table
// record also carries TextOptions; a table pane is still a text pane.
type TableOptions struct {
	Delimiter             *rune
	Quote                 *rune
	AllowNewlinesInQuotes *bool
}

// BinaryOptions are the options legal for a hex compare.
type BinaryOptions struct {
	Address    int64 // start byte offset, Unspecified if unset
	SaveAsPath string
}

// ImageOptions are the options legal for an image compare.
type ImageOptions struct {
	StartX     int // Unspecified if unset
	StartY     int
	SaveAsPath string
}

// FolderOptions are the options legal for a folder compare.
type FolderOptions struct {
	HiddenItems []string // item names filtered from the folder view
}

// AutoOptions is the union carried while the concrete kind is unknown.
// SaveAsPath appears once; it serves whichever kind the classifier
// resolves.
type AutoOptions struct {
	Text    TextOptions
	Table   TableOptions
	Address int64 // binary start offset, Unspecified if unset
	StartX  int   // image origin, Unspecified if unset
	StartY  int
}

// OpenParams is a write-once, capability-tagged parameter record.
// Equality and merging are not supported.
type OpenParams struct {
	kind   RecordKind
	text   *TextOptions
	table  *TableOptions
	binary *BinaryOptions
	image  *ImageOptions
	folder *FolderOptions
}

// None returns an empty record carrying no capabilities.
func None() OpenParams { return OpenParams{kind: KindNone} }

// Text constructs a text-kind record.
func Text(opts TextOptions) OpenParams {
	return OpenParams{kind: KindText, text: &opts}
}

// Table constructs a table-kind record. Table records carry text
// options as well.
func Table(text TextOptions, table TableOptions) OpenParams {
	return OpenParams{kind: KindTable, text: &text, table: &table}
}

// Binary constructs a hex-kind record.
func Binary(opts BinaryOptions) OpenParams {
	return OpenParams{kind: KindBinary, binary: &opts}
}

// Image constructs an image-kind record.
func Image(opts ImageOptions) OpenParams {
	return OpenParams{kind: KindImage, image: &opts}
}

// Web constructs a web-page record. Web compares carry no options.
func Web() OpenParams { return OpenParams{kind: KindWeb} }

// Folder constructs a folder-kind record.
func Folder(opts FolderOptions) OpenParams {
	return OpenParams{kind: KindFolder, folder: &opts}
}

// Auto constructs a record exposing the table+binary+image union. The
// single SaveAsPath in opts.Text serves the kind the classifier later
// resolves.
func Auto(opts AutoOptions) OpenParams {
	text := opts.Text
	table := opts.Table
	return OpenParams{
		kind:   KindAuto,
		text:   &text,
		table:  &table,
		binary: &BinaryOptions{Address: opts.Address, SaveAsPath: opts.Text.SaveAsPath},
		image:  &ImageOptions{StartX: opts.StartX, StartY: opts.StartY, SaveAsPath: opts.Text.SaveAsPath},
	}
}

// Kind returns the declared record kind.
func (p OpenParams) Kind() RecordKind { return p.kind }

// Text returns the text options if the record carries them.
func (p OpenParams) Text() (TextOptions, bool) {
	if p.text == nil {
		return TextOptions{}, false
	}
	return *p.text, true
}

// Table returns the table options if the record carries them.
func (p OpenParams) Table() (TableOptions, bool) {
	if p.table == nil {
		return TableOptions{}, false
	}
	return *p.table, true
}

// Binary returns the binary options if the record carries them.
func (p OpenParams) Binary() (BinaryOptions, bool) {
	if p.binary == nil {
		return BinaryOptions{}, false
	}
	return *p.binary, true
}

// Image returns the image options if the record carries them.
func (p OpenParams) Image() (ImageOptions, bool) {
	if p.image == nil {
		return ImageOptions{}, false
	}
	return *p.image, true
}

// Folder returns the folder options if the record carries them.
func (p OpenParams) Folder() (FolderOptions, bool) {
	if p.folder == nil {
		return FolderOptions{}, false
	}
	return *p.folder, true
}

// SaveAsPath returns the record's alternate save-as path regardless of
// which capability carries it, or "" if none does.
func (p OpenParams) SaveAsPath() string {
	if p.text != nil && p.text.SaveAsPath != "" {
		return p.text.SaveAsPath
	}
	if p.binary != nil && p.binary.SaveAsPath != "" {
		return p.binary.SaveAsPath
	}
	if p.image != nil && p.image.SaveAsPath != "" {
		return p.image.SaveAsPath
	}
	return ""
}

// Item is one source in an open request: a filesystem path, an
// in-memory buffer, or a clipboard reference.
type Item struct {
	Location    string // path, "clipboard:<n>", or "untitled:<name>"
	Buffer      []byte // content for non-path-backed items
	Flags       doc.Flags
	Description string
}

// IsPath reports whether the item is backed by a filesystem path.
func (it Item) IsPath() bool {
	return it.Location != "" && it.Buffer == nil
}

// OpenRequest is one logical ask to compare. It is immutable once
// dispatch begins and discarded when dispatch completes.
type OpenRequest struct {
	Items      []Item
	ReportPath string
	Recurse    *bool    // recurse into subfolders; nil means unspecified
	TargetKind doc.Kind // explicit frame kind; KindOther means classify
	Params     OpenParams
}

// Locations returns the ordered item locations.
func (r *OpenRequest) Locations() []string {
	locs := make([]string, len(r.Items))
	for i, it := range r.Items {
		locs[i] = it.Location
	}
	return locs
}
