// Package dispatch is the top-level open-request orchestrator: it
// classifies a request, constructs the backing document (or reuses an
// existing one), and wires the result into the watch coordinator, the
// temp file ledger, and the menu engine.
//
// The dispatcher runs on the main loop. Failed dispatches roll back
// every partial registration before returning, so the registry, ledger
// and watch state are exactly as they were before the call.
package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collate/internal/classify"
	"collate/internal/config"
	"collate/internal/doc"
	"collate/internal/errors"
	"collate/internal/ledger"
	"collate/internal/logger"
	"collate/internal/menu"
	"collate/internal/params"
	"collate/internal/registry"
	"collate/internal/watch"
)

// MRU kind keys.
const (
	RecentFiles     = "files"
	RecentFolders   = "folders"
	RecentConflicts = "conflicts"
)

// ViewHandle is the result of a successful dispatch: the backing
// document, registered in exactly one registry collection, and its
// non-stale menu profile.
type ViewHandle struct {
	Doc    *doc.Document
	Menu   *menu.Profile
	Reused bool
}

// ChangeHandler receives content-change notifications for a document,
// always on the main loop.
type ChangeHandler func(d *doc.Document, n watch.Notification)

// Dispatcher owns the document registry, ledger and menu cache. It is
// the single process-scoped orchestrator, constructed at startup and
// injected into collaborators rather than looked up ambiently.
type Dispatcher struct {
	cfg     *config.Config
	reg     *registry.Registry
	led     *ledger.Ledger
	watcher *watch.Coordinator
	menus   *menu.Engine
	loop    *Loop

	classifier classify.Classifier
	confirmer  Confirmer
	recents    Recents
	clip       ClipboardSource
	patch      PatchWriter

	onChange ChangeHandler
}

// Options carries the collaborators a Dispatcher is built from. Nil
// optional collaborators get no-op defaults.
type Options struct {
	Config     *config.Config
	Watcher    *watch.Coordinator
	Menus      *menu.Engine
	Classifier classify.Classifier
	Confirmer  Confirmer
	Recents    Recents
	Clipboard  ClipboardSource
	Patch      PatchWriter
}

// New builds a dispatcher and hooks registry removal up to watch
// unsubscription and ledger reclamation.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		cfg:        opts.Config,
		reg:        registry.New(),
		led:        ledger.New(),
		watcher:    opts.Watcher,
		menus:      opts.Menus,
		loop:       NewLoop(),
		classifier: opts.Classifier,
		confirmer:  opts.Confirmer,
		recents:    opts.Recents,
		clip:       opts.Clipboard,
		patch:      opts.Patch,
	}
	if d.classifier == nil {
		d.classifier = classify.Sniffer{}
	}
	if d.confirmer == nil {
		d.confirmer = ConfirmerFunc(func([]string) bool { return true })
	}

	// Removal is the single point where watches are released and temp
	// files reclaimed.
	d.reg.OnRemove(func(closed *doc.Document) {
		if d.watcher != nil {
			d.watcher.Unwatch(closed.ID)
		}
		d.led.ReleaseDoc(closed.ID)
	})
	return d
}

// Loop returns the main-thread message queue.
func (d *Dispatcher) Loop() *Loop { return d.loop }

// Registry returns the document registry. Main loop only.
func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Ledger returns the temp file ledger. Main loop only.
func (d *Dispatcher) Ledger() *ledger.Ledger { return d.led }

// SetChangeHandler installs the content-change callback.
func (d *Dispatcher) SetChangeHandler(h ChangeHandler) { d.onChange = h }

// HandleChange applies one watch notification. Called from the main
// loop after the notification is marshalled off the watch channel.
func (d *Dispatcher) HandleChange(n watch.Notification) {
	changed, ok := d.reg.Get(n.DocID)
	if !ok {
		return
	}
	logger.Debug("Dispatch: change batch=%d doc=%s paths=%v", n.Batch, n.DocID, n.Paths)
	if d.onChange != nil {
		d.onChange(changed, n)
	}
}

// Dispatch opens a comparison for the request, reusing an existing
// document when one matches the resolved kind and source locations.
func (d *Dispatcher) Dispatch(req *params.OpenRequest) (*ViewHandle, error) {
	if len(req.Items) == 0 {
		return nil, errors.E(errors.Op("dispatch.Dispatch"), errors.KindInvalid, "request has no items")
	}

	// Step 1: folders route to folder handling unconditionally; the
	// recurse flag and hidden-items list are forwarded as-is.
	anyFolder := false
	for _, it := range req.Items {
		if !it.IsPath() {
			continue
		}
		info, err := os.Stat(it.Location)
		if err != nil {
			return nil, errors.PathNotFound(it.Location)
		}
		if info.IsDir() {
			anyFolder = true
		}
	}

	// Step 2: resolve the effective kind. A binary hint on any item
	// settles an unclassified request as hex without consulting the
	// classifier.
	kind := req.TargetKind
	switch {
	case anyFolder:
		kind = doc.KindFolder
	case kind == doc.KindOther && anyBinaryHint(req.Items):
		kind = doc.KindHex
	case kind == doc.KindOther:
		resolved, err := d.classifier.ClassifyKind(req.Locations())
		if err != nil {
			return nil, err
		}
		kind = resolved
	}

	// Step 3: reuse lookup, keyed on normalized source-location
	// identity.
	if existing, ok := d.reg.FindReusable(kind, req.Locations()); ok {
		logger.Info("Dispatch: reusing doc id=%s for %v", existing.ID, req.Locations())
		return &ViewHandle{Doc: existing, Menu: d.buildMenu(kind), Reused: true}, nil
	}

	// Step 4: large sources need user confirmation before any side
	// effect happens.
	if err := d.confirmLargeSources(req); err != nil {
		return nil, err
	}

	// Step 5: construct and register. Everything from here on must be
	// rolled back if a later step fails.
	created := doc.New(kind, req.Locations())
	created.ReportPath = req.ReportPath
	for _, it := range req.Items {
		created.Descriptions = append(created.Descriptions, it.Description)
		created.Flags = append(created.Flags, it.Flags)
	}

	if err := d.materializeBuffers(created, req); err != nil {
		d.rollback(created)
		return nil, err
	}
	if saveAs := req.Params.SaveAsPath(); saveAs != "" {
		d.led.Register(created.ID, saveAs, "save-as")
	}

	if d.watcher != nil {
		if err := d.watcher.Watch(created.ID, created.WatchablePaths()); err != nil {
			// Non-fatal: the document opens, the watch is simply absent.
			logger.Warn("Dispatch: %v", err)
		}
	}

	d.reg.Insert(created)

	// Step 6: attach the menu profile and record history.
	handle := &ViewHandle{Doc: created, Menu: d.buildMenu(kind)}
	d.recordRecent(kind, req)
	logger.Info("Dispatch: opened doc id=%s kind=%s locations=%v", created.ID, kind, created.Locations)
	return handle, nil
}

// anyBinaryHint reports whether any item carries the binary hint.
func anyBinaryHint(items []params.Item) bool {
	for _, it := range items {
		if it.Flags&doc.FlagBinaryHint != 0 {
			return true
		}
	}
	return false
}

// CloseDocument removes the document from its registry collection,
// releasing its watches and ledger entries through the removal hook.
func (d *Dispatcher) CloseDocument(id string) {
	d.reg.Remove(id)
}

// Shutdown releases every document and remaining temp file.
func (d *Dispatcher) Shutdown() {
	for _, kind := range []doc.Kind{doc.KindFolder, doc.KindFile, doc.KindHex, doc.KindImage, doc.KindWebPage} {
		for _, open := range append([]*doc.Document(nil), d.reg.EnumerateByKind(kind)...) {
			d.reg.Remove(open.ID)
		}
	}
	d.led.ReleaseAll()
}

func (d *Dispatcher) buildMenu(kind doc.Kind) *menu.Profile {
	if d.menus == nil {
		return nil
	}
	return d.menus.BuildMenu(kind)
}

// confirmLargeSources asks the notifier collaborator before opening any
// item over the configured threshold. Declining aborts with
// UserCancelled and no side effects.
func (d *Dispatcher) confirmLargeSources(req *params.OpenRequest) error {
	threshold := int64(config.DefaultLargeFileThreshold)
	if d.cfg != nil {
		threshold = d.cfg.GetLargeFileThreshold()
	}
	if threshold <= 0 {
		return nil
	}
	var large []string
	for _, it := range req.Items {
		if !it.IsPath() {
			continue
		}
		info, err := os.Stat(it.Location)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > threshold {
			large = append(large, it.Location)
		}
	}
	if len(large) == 0 {
		return nil
	}
	if !d.confirmer.ConfirmProceed(large) {
		return errors.UserCancelled(strings.Join(large, ", "))
	}
	return nil
}

// materializeBuffers writes in-memory items to ledger-tracked temp
// files so the diff engine has path-backed panes.
func (d *Dispatcher) materializeBuffers(created *doc.Document, req *params.OpenRequest) error {
	for i, it := range req.Items {
		if it.Buffer == nil {
			continue
		}
		pattern := fmt.Sprintf("collate-pane%d-*", i)
		if _, err := d.led.CreateTemp(created.ID, pattern, "buffer pane", it.Buffer); err != nil {
			return err
		}
	}
	return nil
}

// rollback undoes partial registrations from a failed dispatch.
func (d *Dispatcher) rollback(created *doc.Document) {
	if d.watcher != nil {
		d.watcher.Unwatch(created.ID)
	}
	d.led.ReleaseDoc(created.ID)
}

func (d *Dispatcher) recordRecent(kind doc.Kind, req *params.OpenRequest) {
	if d.recents == nil {
		return
	}
	key := RecentFiles
	if kind == doc.KindFolder {
		key = RecentFolders
	}
	for _, it := range req.Items {
		if it.IsPath() {
			d.recents.AddRecent(key, doc.NormalizeLocation(it.Location), 0)
		}
	}
}

// OpenFiles dispatches a path-based compare.
func (d *Dispatcher) OpenFiles(paths []string, p params.OpenParams, target doc.Kind) (*ViewHandle, error) {
	req := &params.OpenRequest{TargetKind: target, Params: p}
	for _, path := range paths {
		req.Items = append(req.Items, params.Item{Location: path})
	}
	return d.Dispatch(req)
}

// OpenFolders dispatches a folder compare with the given recurse
// setting (nil means use the configured default).
func (d *Dispatcher) OpenFolders(paths []string, recurse *bool, hidden []string) (*ViewHandle, error) {
	if recurse == nil && d.cfg != nil {
		v := d.cfg.GetRecurse()
		recurse = &v
	}
	if hidden == nil && d.cfg != nil {
		hidden = d.cfg.GetHiddenItems()
	}
	req := &params.OpenRequest{
		TargetKind: doc.KindFolder,
		Recurse:    recurse,
		Params:     params.Folder(params.FolderOptions{HiddenItems: hidden}),
	}
	for _, path := range paths {
		req.Items = append(req.Items, params.Item{Location: path})
	}
	return d.Dispatch(req)
}

// OpenClipboard compares the n most recent clipboard buffers as text
// panes. Buffer zero is the current clipboard content.
func (d *Dispatcher) OpenClipboard(n int, p params.OpenParams) (*ViewHandle, error) {
	if d.clip == nil {
		return nil, errors.E(errors.Op("dispatch.OpenClipboard"), errors.KindInvalid, "no clipboard source configured")
	}
	if n < 2 {
		n = 2
	}
	buffers, err := d.clip.Buffers(n)
	if err != nil {
		return nil, errors.E(errors.Op("dispatch.OpenClipboard"), errors.KindIO, err)
	}
	req := &params.OpenRequest{TargetKind: doc.KindFile, Params: p}
	for i, buf := range buffers {
		desc := fmt.Sprintf("Clipboard (%d back)", i)
		if i == 0 {
			desc = "Clipboard (current)"
		}
		req.Items = append(req.Items, params.Item{
			Location:    fmt.Sprintf("clipboard:%d", i),
			Buffer:      buf,
			Description: desc,
			Flags:       doc.FlagReadOnly,
		})
	}
	return d.Dispatch(req)
}

// SelfCompare compares a snapshot of the file against the live file.
// The snapshot pane is a ledger-tracked temp copy.
func (d *Dispatcher) SelfCompare(path string, p params.OpenParams) (*ViewHandle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PathNotFound(path)
	}
	req := &params.OpenRequest{
		Params: p,
		Items: []params.Item{
			{
				Location:    "untitled:" + filepath.Base(path),
				Buffer:      content,
				Description: "Snapshot",
				Flags:       doc.FlagReadOnly,
			},
			{Location: path},
		},
	}
	handle, err := d.Dispatch(req)
	if err != nil {
		return nil, err
	}
	if d.recents != nil {
		d.recents.AddRecent(RecentFiles, doc.NormalizeLocation(path), 0)
	}
	return handle, nil
}

// GeneratePatch routes a registered document to the diff engine's
// report surface.
func (d *Dispatcher) GeneratePatch(docID, reportPath string) error {
	if d.patch == nil {
		return errors.E(errors.Op("dispatch.GeneratePatch"), errors.KindInvalid, "no patch writer configured")
	}
	target, ok := d.reg.Get(docID)
	if !ok {
		return errors.E(errors.Op("dispatch.GeneratePatch"), errors.KindInvalid, fmt.Sprintf("document %s is not open", docID))
	}
	if err := d.patch.WritePatch(target.Locations, reportPath); err != nil {
		return errors.E(errors.Op("dispatch.GeneratePatch"), errors.KindIO, reportPath, err)
	}
	return nil
}
