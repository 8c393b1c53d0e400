package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"collate/internal/config"
	"collate/internal/doc"
	"collate/internal/errors"
	"collate/internal/menu"
	"collate/internal/params"
	"collate/internal/plugin"
	"collate/internal/watch"
)

// recordingRecents captures AddRecent calls.
type recordingRecents struct {
	added map[string][]string
}

func (r *recordingRecents) AddRecent(kindKey, item string, maxItems int) {
	if r.added == nil {
		r.added = make(map[string][]string)
	}
	r.added[kindKey] = append(r.added[kindKey], item)
}

// fakeClipboard serves fixed buffers.
type fakeClipboard struct {
	buffers [][]byte
	err     error
}

func (f *fakeClipboard) Buffers(n int) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.buffers[:n], nil
}

// recordingPatch captures WritePatch calls.
type recordingPatch struct {
	locations  []string
	reportPath string
	err        error
}

func (r *recordingPatch) WritePatch(locations []string, reportPath string) error {
	r.locations = locations
	r.reportPath = reportPath
	return r.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func testMenus(t *testing.T) *menu.Engine {
	t.Helper()
	return menu.NewEngine(plugin.NewRegistry(t.TempDir()))
}

func newTestDispatcher(t *testing.T, opts Options) *Dispatcher {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	if opts.Menus == nil {
		opts.Menus = testMenus(t)
	}
	d := New(opts)
	t.Cleanup(d.Shutdown)
	return d
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDispatchOpensAndRegisters(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "left")
	right := writeFile(t, dir, "right.txt", "right")

	handle, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindOther)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if handle.Reused {
		t.Error("fresh open must not report reuse")
	}
	if handle.Doc.Kind != doc.KindFile {
		t.Errorf("kind = %v, want KindFile", handle.Doc.Kind)
	}
	if handle.Menu == nil || handle.Menu.Kind != doc.KindFile {
		t.Error("handle should carry the file menu profile")
	}
	if d.Registry().Len() != 1 {
		t.Errorf("registry len = %d, want 1", d.Registry().Len())
	}
}

func TestDispatchReusesExistingDocument(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "left")
	right := writeFile(t, dir, "right.txt", "right")

	first, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindOther)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindOther)
	if err != nil {
		t.Fatal(err)
	}

	if !second.Reused {
		t.Error("second open of the same sources should reuse")
	}
	if second.Doc != first.Doc {
		t.Error("reuse must return the same document")
	}
	if d.Registry().Len() != 1 {
		t.Errorf("registry len = %d, want 1", d.Registry().Len())
	}
}

func TestDispatchRoutesFoldersUnconditionally(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	left := t.TempDir()
	right := t.TempDir()

	// Even with an explicit file target, directories open a folder frame.
	handle, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindFile)
	if err != nil {
		t.Fatal(err)
	}
	if handle.Doc.Kind != doc.KindFolder {
		t.Errorf("kind = %v, want KindFolder", handle.Doc.Kind)
	}
}

func TestDispatchMissingPathHasNoSideEffects(t *testing.T) {
	d := newTestDispatcher(t, Options{})

	_, err := d.OpenFiles([]string{"/nonexistent/by/construction"}, params.None(), doc.KindOther)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, errors.KindPathNotFound) {
		t.Errorf("error kind = %v, want KindPathNotFound", errors.GetKind(err))
	}
	if d.Registry().Len() != 0 || d.Ledger().Len() != 0 {
		t.Error("failed dispatch must leave no registrations behind")
	}
}

func TestDispatchMixedKinds(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	text := writeFile(t, dir, "a.txt", "text")
	image := writeFile(t, dir, "b.png", "fake image")

	_, err := d.OpenFiles([]string{text, image}, params.None(), doc.KindOther)
	if !errors.Is(err, errors.KindMixedKind) {
		t.Errorf("error = %v, want KindMixedKind", err)
	}
	if d.Registry().Len() != 0 {
		t.Error("mixed-kind dispatch must register nothing")
	}
}

func TestDispatchBinaryHintForcesHexFrame(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	// .txt would classify as a text compare without the hint.
	left := writeFile(t, dir, "left.txt", "left")
	right := writeFile(t, dir, "right.txt", "right")

	handle, err := d.Dispatch(&params.OpenRequest{
		Items: []params.Item{
			{Location: left, Flags: doc.FlagBinaryHint},
			{Location: right},
		},
		TargetKind: doc.KindOther,
		Params:     params.None(),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if handle.Doc.Kind != doc.KindHex {
		t.Errorf("kind = %v, want KindHex", handle.Doc.Kind)
	}
}

func TestDispatchBinaryHintYieldsToExplicitTarget(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	left := writeFile(t, dir, "left.txt", "left")
	right := writeFile(t, dir, "right.txt", "right")

	handle, err := d.Dispatch(&params.OpenRequest{
		Items: []params.Item{
			{Location: left, Flags: doc.FlagBinaryHint},
			{Location: right},
		},
		TargetKind: doc.KindFile,
		Params:     params.None(),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if handle.Doc.Kind != doc.KindFile {
		t.Errorf("kind = %v, an explicit target outranks the hint", handle.Doc.Kind)
	}
}

func TestDispatchLargeFileConfirmDeclined(t *testing.T) {
	cfg := testConfig(t)
	cfg.LargeFileThreshold = 4

	var asked []string
	d := newTestDispatcher(t, Options{
		Config: cfg,
		Confirmer: ConfirmerFunc(func(locations []string) bool {
			asked = locations
			return false
		}),
	})

	dir := t.TempDir()
	big := writeFile(t, dir, "big.txt", "well over four bytes")
	small := writeFile(t, dir, "small.txt", "ok")

	_, err := d.OpenFiles([]string{big, small}, params.None(), doc.KindOther)
	if !errors.Is(err, errors.KindUserCancelled) {
		t.Fatalf("error = %v, want KindUserCancelled", err)
	}
	if len(asked) != 1 || asked[0] != big {
		t.Errorf("confirmer asked about %v, want just the oversized file", asked)
	}
	if d.Registry().Len() != 0 || d.Ledger().Len() != 0 {
		t.Error("declined open must have no side effects")
	}
}

func TestDispatchLargeFileConfirmAccepted(t *testing.T) {
	cfg := testConfig(t)
	cfg.LargeFileThreshold = 4

	d := newTestDispatcher(t, Options{
		Config:    cfg,
		Confirmer: ConfirmerFunc(func([]string) bool { return true }),
	})

	dir := t.TempDir()
	big := writeFile(t, dir, "big.txt", "well over four bytes")
	other := writeFile(t, dir, "other.txt", "also big enough here")

	if _, err := d.OpenFiles([]string{big, other}, params.None(), doc.KindOther); err != nil {
		t.Fatalf("accepted open failed: %v", err)
	}
}

func TestBufferItemsAreMaterializedAndReclaimed(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	path := writeFile(t, dir, "live.txt", "live")

	req := &params.OpenRequest{
		TargetKind: doc.KindFile,
		Items: []params.Item{
			{Location: "untitled:snapshot", Buffer: []byte("snapshot"), Flags: doc.FlagReadOnly},
			{Location: path},
		},
	}
	handle, err := d.Dispatch(req)
	if err != nil {
		t.Fatal(err)
	}

	entries := d.Ledger().Entries(handle.Doc.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger has %d entries for the doc, want 1", len(entries))
	}
	tempPath := entries[0].Path
	if content, err := os.ReadFile(tempPath); err != nil || string(content) != "snapshot" {
		t.Errorf("materialized buffer = %q, %v", content, err)
	}

	d.CloseDocument(handle.Doc.ID)
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Error("closing the document must reclaim its temp files")
	}
	if d.Registry().Len() != 0 {
		t.Error("document should be gone from the registry")
	}
}

func TestSaveAsPathIsLedgerTracked(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	left := writeFile(t, dir, "l.txt", "l")
	right := writeFile(t, dir, "r.txt", "r")
	saveAs := filepath.Join(dir, "merged.txt")

	p := params.Text(params.TextOptions{SaveAsPath: saveAs})
	handle, err := d.OpenFiles([]string{left, right}, p, doc.KindFile)
	if err != nil {
		t.Fatal(err)
	}

	entries := d.Ledger().Entries(handle.Doc.ID)
	if len(entries) != 1 || entries[0].Path != saveAs {
		t.Errorf("ledger entries = %v, want the save-as path", entries)
	}
}

func TestDispatchRecordsRecents(t *testing.T) {
	recents := &recordingRecents{}
	d := newTestDispatcher(t, Options{Recents: recents})

	dir := t.TempDir()
	left := writeFile(t, dir, "l.txt", "l")
	right := writeFile(t, dir, "r.txt", "r")
	if _, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindOther); err != nil {
		t.Fatal(err)
	}
	if len(recents.added[RecentFiles]) != 2 {
		t.Errorf("files history = %v, want both panes", recents.added[RecentFiles])
	}

	folder := t.TempDir()
	if _, err := d.OpenFolders([]string{folder, folder}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if len(recents.added[RecentFolders]) == 0 {
		t.Error("folder opens should land in the folders history")
	}
}

func TestOpenClipboard(t *testing.T) {
	clip := &fakeClipboard{buffers: [][]byte{[]byte("now"), []byte("before")}}
	d := newTestDispatcher(t, Options{Clipboard: clip})

	handle, err := d.OpenClipboard(2, params.None())
	if err != nil {
		t.Fatalf("OpenClipboard: %v", err)
	}
	if handle.Doc.Kind != doc.KindFile {
		t.Errorf("kind = %v, want KindFile", handle.Doc.Kind)
	}
	locs := handle.Doc.Locations
	if len(locs) != 2 || locs[0] != "clipboard:0" || locs[1] != "clipboard:1" {
		t.Errorf("locations = %v", locs)
	}
	// Both panes are buffer-backed, so both get ledger temp files.
	if got := len(d.Ledger().Entries(handle.Doc.ID)); got != 2 {
		t.Errorf("ledger entries = %d, want 2", got)
	}
}

func TestOpenClipboardWithoutSource(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	if _, err := d.OpenClipboard(2, params.None()); err == nil {
		t.Error("expected an error without a clipboard source")
	}
}

func TestSelfCompare(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "original content")

	handle, err := d.SelfCompare(path, params.None())
	if err != nil {
		t.Fatalf("SelfCompare: %v", err)
	}
	if len(handle.Doc.Locations) != 2 {
		t.Fatalf("locations = %v", handle.Doc.Locations)
	}
	if handle.Doc.Flags[0]&doc.FlagReadOnly == 0 {
		t.Error("snapshot pane must be read-only")
	}

	// The snapshot is a temp copy of the content at open time.
	entries := d.Ledger().Entries(handle.Doc.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want the snapshot", len(entries))
	}
	if content, _ := os.ReadFile(entries[0].Path); string(content) != "original content" {
		t.Errorf("snapshot = %q", content)
	}

	// The same file self-compared again reuses the open frame.
	again, err := d.SelfCompare(path, params.None())
	if err != nil {
		t.Fatal(err)
	}
	if !again.Reused || again.Doc != handle.Doc {
		t.Error("second self-compare should reuse the open frame")
	}
}

func TestGeneratePatch(t *testing.T) {
	patch := &recordingPatch{}
	d := newTestDispatcher(t, Options{Patch: patch})

	dir := t.TempDir()
	left := writeFile(t, dir, "l.txt", "l")
	right := writeFile(t, dir, "r.txt", "r")
	handle, err := d.OpenFiles([]string{left, right}, params.None(), doc.KindOther)
	if err != nil {
		t.Fatal(err)
	}

	report := filepath.Join(dir, "out.patch")
	if err := d.GeneratePatch(handle.Doc.ID, report); err != nil {
		t.Fatalf("GeneratePatch: %v", err)
	}
	if patch.reportPath != report || len(patch.locations) != 2 {
		t.Errorf("patch writer got %v -> %q", patch.locations, patch.reportPath)
	}

	if err := d.GeneratePatch("no-such-doc", report); err == nil {
		t.Error("patch for an unknown document must fail")
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "a")

	handle, err := d.SelfCompare(path, params.None())
	if err != nil {
		t.Fatal(err)
	}
	tempPath := d.Ledger().Entries(handle.Doc.ID)[0].Path

	d.Shutdown()

	if d.Registry().Len() != 0 || d.Ledger().Len() != 0 {
		t.Error("shutdown must drain registry and ledger")
	}
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Error("shutdown must reclaim temp files")
	}
}

func TestHandleChangeRoutesToOpenDocuments(t *testing.T) {
	d := newTestDispatcher(t, Options{})
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "a")
	handle, err := d.SelfCompare(path, params.None())
	if err != nil {
		t.Fatal(err)
	}

	var gotDoc *doc.Document
	d.SetChangeHandler(func(changed *doc.Document, n watch.Notification) {
		gotDoc = changed
	})

	d.HandleChange(watch.Notification{DocID: handle.Doc.ID, Paths: []string{dir}, Batch: 1})
	if gotDoc != handle.Doc {
		t.Error("change for an open document should reach the handler")
	}

	// Changes for closed documents are dropped.
	gotDoc = nil
	d.CloseDocument(handle.Doc.ID)
	d.HandleChange(watch.Notification{DocID: handle.Doc.ID, Paths: []string{dir}, Batch: 2})
	if gotDoc != nil {
		t.Error("change for a closed document must be ignored")
	}
}
