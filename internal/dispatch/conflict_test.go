package dispatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"collate/internal/doc"
	"collate/internal/errors"
	"collate/internal/params"
)

const conflictSample = `line one
<<<<<<< HEAD
my change
=======
their change
>>>>>>> feature
line two
`

const diff3Sample = `start
<<<<<<< HEAD
mine
||||||| base
original
=======
theirs
>>>>>>> feature
end
`

func TestSplitConflict(t *testing.T) {
	mine, theirs, conflicts, err := splitConflict([]byte(conflictSample))
	if err != nil {
		t.Fatalf("splitConflict: %v", err)
	}
	if conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", conflicts)
	}
	if string(mine) != "line one\nmy change\nline two\n" {
		t.Errorf("mine = %q", mine)
	}
	if string(theirs) != "line one\ntheir change\nline two\n" {
		t.Errorf("theirs = %q", theirs)
	}
}

func TestSplitConflictDropsDiff3Base(t *testing.T) {
	mine, theirs, conflicts, err := splitConflict([]byte(diff3Sample))
	if err != nil {
		t.Fatalf("splitConflict: %v", err)
	}
	if conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", conflicts)
	}
	if strings.Contains(string(mine), "original") || strings.Contains(string(theirs), "original") {
		t.Error("base section must not leak into either side")
	}
	if string(mine) != "start\nmine\nend\n" || string(theirs) != "start\ntheirs\nend\n" {
		t.Errorf("mine = %q theirs = %q", mine, theirs)
	}
}

func TestSplitConflictRejectsMalformedMarkers(t *testing.T) {
	cases := []string{
		"<<<<<<< a\nnever terminated\n",
		">>>>>>> stray end\n",
		"<<<<<<< a\n<<<<<<< nested\n",
	}
	for _, input := range cases {
		if _, _, _, err := splitConflict([]byte(input)); err == nil {
			t.Errorf("splitConflict(%q) should fail", input)
		}
	}
}

func TestOpenConflict(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	path := filepath.Join(t.TempDir(), "merge.txt")
	if err := os.WriteFile(path, []byte(conflictSample), 0644); err != nil {
		t.Fatal(err)
	}

	handle, err := d.OpenConflict(path, params.None())
	if err != nil {
		t.Fatalf("OpenConflict: %v", err)
	}
	if handle.Doc.Kind != doc.KindFile {
		t.Errorf("kind = %v, want KindFile", handle.Doc.Kind)
	}
	if len(handle.Doc.Locations) != 2 {
		t.Fatalf("locations = %v", handle.Doc.Locations)
	}
	// Theirs pane first and read-only; mine pane editable.
	if handle.Doc.Flags[0]&doc.FlagReadOnly == 0 {
		t.Error("theirs pane must be read-only")
	}
	if handle.Doc.Flags[1]&doc.FlagReadOnly != 0 {
		t.Error("mine pane must stay editable")
	}

	// The original file is untouched.
	content, err := os.ReadFile(path)
	if err != nil || string(content) != conflictSample {
		t.Error("conflict source must not be modified")
	}
}

func TestOpenConflictWithoutMarkers(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	path := filepath.Join(t.TempDir(), "clean.txt")
	if err := os.WriteFile(path, []byte("no markers here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := d.OpenConflict(path, params.None())
	if err == nil {
		t.Fatal("a marker-free file is not a conflict file")
	}
	if !errors.Is(err, errors.KindInvalid) {
		t.Errorf("error kind = %v, want KindInvalid", errors.GetKind(err))
	}
}
