package cmd

import (
	"testing"

	"github.com/spf13/pflag"

	"collate/internal/doc"
	"collate/internal/params"
)

// resetOpenFlags restores the open command's flag set to its defaults
// so Changed() reflects only what a test sets.
func resetOpenFlags(t *testing.T) {
	t.Helper()
	openCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			if err := f.Value.Set(f.DefValue); err != nil {
				t.Fatal(err)
			}
			f.Changed = false
		}
	})
	openFlags.as = "auto"
	openFlags.delimiter = ""
	openFlags.quote = ""
	openFlags.fileExt = ""
	openFlags.saveAs = ""
	openFlags.hidden = nil
	openFlags.descriptions = nil
}

func setFlag(t *testing.T, name, value string) {
	t.Helper()
	if err := openCmd.Flags().Set(name, value); err != nil {
		t.Fatal(err)
	}
}

func TestBuildOpenParamsDefaultsToAuto(t *testing.T) {
	resetOpenFlags(t)

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != params.KindAuto {
		t.Errorf("kind = %v, want KindAuto", p.Kind())
	}
	if target != doc.KindOther {
		t.Errorf("target = %v, want KindOther (classify)", target)
	}
	text, ok := p.Text()
	if !ok {
		t.Fatal("auto record must carry text options")
	}
	if text.StartLine != params.Unspecified || text.StartColumn != params.Unspecified {
		t.Error("unset caret position must stay Unspecified")
	}
}

func TestBuildOpenParamsText(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "text")
	setFlag(t, "line", "42")
	setFlag(t, "ext", ".go")

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != params.KindText || target != doc.KindFile {
		t.Errorf("kind = %v target = %v, want KindText/KindFile", p.Kind(), target)
	}
	text, _ := p.Text()
	if text.StartLine != 42 {
		t.Errorf("StartLine = %d, want 42", text.StartLine)
	}
	if text.StartColumn != params.Unspecified {
		t.Error("column flag was not set; must stay Unspecified")
	}
	if text.FileExt != ".go" {
		t.Errorf("FileExt = %q", text.FileExt)
	}
}

func TestBuildOpenParamsTable(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "table")
	setFlag(t, "delimiter", ";")
	setFlag(t, "quoted-newlines", "true")

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind() != params.KindTable || target != doc.KindTable {
		t.Errorf("kind = %v target = %v, want KindTable/KindTable", p.Kind(), target)
	}
	table, _ := p.Table()
	if table.Delimiter == nil || *table.Delimiter != ';' {
		t.Error("delimiter not carried")
	}
	if table.Quote != nil {
		t.Error("unset quote must stay nil")
	}
	if table.AllowNewlinesInQuotes == nil || !*table.AllowNewlinesInQuotes {
		t.Error("quoted-newlines not carried")
	}
	if _, ok := p.Text(); !ok {
		t.Error("table records carry text options too")
	}
}

func TestBuildOpenParamsBinary(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "binary")
	setFlag(t, "address", "4096")
	setFlag(t, "save-as", "/tmp/merged.bin")

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if target != doc.KindHex {
		t.Errorf("target = %v, want KindHex", target)
	}
	bin, _ := p.Binary()
	if bin.Address != 4096 {
		t.Errorf("Address = %d, want 4096", bin.Address)
	}
	if p.SaveAsPath() != "/tmp/merged.bin" {
		t.Errorf("SaveAsPath = %q", p.SaveAsPath())
	}
}

func TestBuildOpenParamsImage(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "image")
	setFlag(t, "x", "10")

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if target != doc.KindImage {
		t.Errorf("target = %v, want KindImage", target)
	}
	img, _ := p.Image()
	if img.StartX != 10 {
		t.Errorf("StartX = %d, want 10", img.StartX)
	}
	if img.StartY != params.Unspecified {
		t.Error("unset Y origin must stay Unspecified")
	}
}

func TestBuildOpenParamsFolder(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "folder")
	setFlag(t, "hide", ".git,node_modules")

	p, target, err := buildOpenParams(openCmd)
	if err != nil {
		t.Fatal(err)
	}
	if target != doc.KindFolder {
		t.Errorf("target = %v, want KindFolder", target)
	}
	folder, ok := p.Folder()
	if !ok || len(folder.HiddenItems) != 2 {
		t.Errorf("HiddenItems = %v", folder.HiddenItems)
	}
}

func TestBuildOpenParamsUnknownKind(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "as", "spreadsheet")

	if _, _, err := buildOpenParams(openCmd); err == nil {
		t.Error("an unknown frame kind must be rejected")
	}
}

func TestBuildOpenParamsRejectsCrossKindFlags(t *testing.T) {
	tests := []struct {
		name string
		as   string
		flag string
		val  string
	}{
		{"address on text", "text", "address", "100"},
		{"delimiter on binary", "binary", "delimiter", ";"},
		{"line on folder", "folder", "line", "3"},
		{"save-as on web", "web", "save-as", "/tmp/out"},
		{"hide on image", "image", "hide", ".git"},
		{"binary-hint on text", "text", "binary-hint", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetOpenFlags(t)
			setFlag(t, "as", tt.as)
			setFlag(t, tt.flag, tt.val)

			if _, _, err := buildOpenParams(openCmd); err == nil {
				t.Errorf("--%s with --as %s must be rejected", tt.flag, tt.as)
			}
		})
	}
}

func TestBuildOpenParamsAutoAcceptsUnion(t *testing.T) {
	resetOpenFlags(t)
	setFlag(t, "line", "3")
	setFlag(t, "delimiter", ";")
	setFlag(t, "address", "16")
	setFlag(t, "x", "1")
	setFlag(t, "binary-hint", "true")

	if _, _, err := buildOpenParams(openCmd); err != nil {
		t.Errorf("auto carries the option union, got: %v", err)
	}
}
