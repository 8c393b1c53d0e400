// Package menu composes per-frame-kind command menus from a static
// template plus a dynamic plugin segment sourced from the enabled
// unpacker/prediffer pipelines.
//
// Profiles are cached and swapped in atomically on reload: a concurrent
// BuildMenu caller either sees the complete old set or the complete new
// set, never a half-rebuilt profile.
package menu

import (
	"sync/atomic"

	"collate/internal/doc"
	"collate/internal/logger"
	"collate/internal/plugin"
)

// Command ids for the static templates.
const (
	CmdFileOpen = 100 + iota
	CmdFileSave
	CmdFileClose
	CmdEditCopy
	CmdEditPaste
	CmdViewRefresh
	CmdDiffNext
	CmdDiffPrev
	CmdFileFirst
	CmdFilePrev
	CmdFileNext
	CmdFileLast
	CmdFolderRescan
	CmdFolderShowHidden
	CmdHexGotoOffset
	CmdImageZoomIn
	CmdImageZoomOut
	CmdWebReload
	CmdGeneratePatch
	CmdReloadPlugins
)

// Mask governs which top-level context a template entry shows in, not
// just which frame kind owns it.
type Mask uint8

const (
	MaskMainFrame Mask = 1 << iota
	MaskFileCompare
	MaskFolderCompare

	MaskAll = MaskMainFrame | MaskFileCompare | MaskFolderCompare
)

// Context is the current top-level applicability context.
type Context Mask

const (
	ContextMainFrame     = Context(MaskMainFrame)
	ContextFileCompare   = Context(MaskFileCompare)
	ContextFolderCompare = Context(MaskFolderCompare)
)

// Entry is one command-menu item.
type Entry struct {
	ID       int
	Icon     int
	Mask     Mask
	Label    string
	Pipeline string // set on dynamic plugin entries only
}

// Profile is the composed menu for one frame kind.
type Profile struct {
	Kind    doc.Kind
	Entries []Entry
	// PluginBase is the first id of the dynamic segment; command
	// dispatch recovers "which pipeline" from "which id" by
	// subtraction.
	PluginBase int
	// ApplyAllID is the id of the synthetic "apply to all" entry, or 0
	// when the entry is disabled.
	ApplyAllID int
	// Version is the rebuild generation that produced this profile.
	Version int

	pipelines []plugin.Pipeline
}

// PipelineForID recovers the pipeline a dynamic entry id refers to.
func (p *Profile) PipelineForID(id int) (plugin.Pipeline, bool) {
	idx := id - p.PluginBase
	if idx < 0 || idx >= len(p.pipelines) {
		return plugin.Pipeline{}, false
	}
	return p.pipelines[idx], true
}

// pluginBaseFor gives each frame kind a fixed, disjoint id range for
// its dynamic segment.
func pluginBaseFor(kind doc.Kind) int {
	return 0x9000 + int(kind)*0x100
}

// menuTemplates are the static per-kind templates, in display order.
var menuTemplates = map[doc.Kind][]Entry{
	doc.KindOther: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdGeneratePatch, Icon: 9, Mask: MaskMainFrame | MaskFileCompare, Label: "Generate Patch"},
		{ID: CmdReloadPlugins, Icon: 10, Mask: MaskAll, Label: "Reload Plugins"},
	},
	doc.KindFolder: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdFolderRescan, Icon: 11, Mask: MaskFolderCompare, Label: "Rescan"},
		{ID: CmdFolderShowHidden, Icon: 12, Mask: MaskFolderCompare, Label: "Show Hidden Items"},
		{ID: CmdFileFirst, Icon: 5, Mask: MaskAll, Label: "First File"},
		{ID: CmdFilePrev, Icon: 6, Mask: MaskAll, Label: "Previous File"},
		{ID: CmdFileNext, Icon: 7, Mask: MaskAll, Label: "Next File"},
		{ID: CmdFileLast, Icon: 8, Mask: MaskAll, Label: "Last File"},
	},
	doc.KindFile: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdFileSave, Icon: 2, Mask: MaskFileCompare, Label: "Save"},
		{ID: CmdEditCopy, Icon: 3, Mask: MaskFileCompare, Label: "Copy"},
		{ID: CmdEditPaste, Icon: 4, Mask: MaskFileCompare, Label: "Paste"},
		{ID: CmdDiffNext, Icon: 13, Mask: MaskFileCompare, Label: "Next Difference"},
		{ID: CmdDiffPrev, Icon: 14, Mask: MaskFileCompare, Label: "Previous Difference"},
		{ID: CmdFileFirst, Icon: 5, Mask: MaskAll, Label: "First File"},
		{ID: CmdFilePrev, Icon: 6, Mask: MaskAll, Label: "Previous File"},
		{ID: CmdFileNext, Icon: 7, Mask: MaskAll, Label: "Next File"},
		{ID: CmdFileLast, Icon: 8, Mask: MaskAll, Label: "Last File"},
	},
	doc.KindHex: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdFileSave, Icon: 2, Mask: MaskFileCompare, Label: "Save"},
		{ID: CmdHexGotoOffset, Icon: 15, Mask: MaskFileCompare, Label: "Go to Offset"},
		{ID: CmdDiffNext, Icon: 13, Mask: MaskFileCompare, Label: "Next Difference"},
		{ID: CmdDiffPrev, Icon: 14, Mask: MaskFileCompare, Label: "Previous Difference"},
	},
	doc.KindImage: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdImageZoomIn, Icon: 16, Mask: MaskFileCompare, Label: "Zoom In"},
		{ID: CmdImageZoomOut, Icon: 17, Mask: MaskFileCompare, Label: "Zoom Out"},
		{ID: CmdDiffNext, Icon: 13, Mask: MaskFileCompare, Label: "Next Difference"},
		{ID: CmdDiffPrev, Icon: 14, Mask: MaskFileCompare, Label: "Previous Difference"},
	},
	doc.KindWebPage: {
		{ID: CmdFileOpen, Icon: 1, Mask: MaskAll, Label: "Open"},
		{ID: CmdWebReload, Icon: 18, Mask: MaskFileCompare, Label: "Reload Page"},
		{ID: CmdDiffNext, Icon: 13, Mask: MaskFileCompare, Label: "Next Difference"},
	},
}

// profileKinds is every kind a profile is cached for.
var profileKinds = []doc.Kind{
	doc.KindOther,
	doc.KindFolder,
	doc.KindFile,
	doc.KindHex,
	doc.KindImage,
	doc.KindWebPage,
}

// PipelineSource is the pipeline registry collaborator.
type PipelineSource interface {
	Pipelines() []plugin.Pipeline
}

// Engine builds and caches MenuProfiles.
type Engine struct {
	source   PipelineSource
	profiles atomic.Pointer[map[doc.Kind]*Profile]

	// Written on the main loop only; reads race-free via ReloadMenus.
	context  Context
	applyAll bool
	version  int
}

// NewEngine creates an engine over the given pipeline source and builds
// the initial profile set.
func NewEngine(source PipelineSource) *Engine {
	e := &Engine{source: source, context: ContextMainFrame}
	e.ReloadMenus()
	return e
}

// SetContext switches the applicability context and rebuilds. Main loop
// only.
func (e *Engine) SetContext(ctx Context) {
	if e.context == ctx {
		return
	}
	e.context = ctx
	e.ReloadMenus()
}

// SetApplyAllEntry toggles the synthetic "apply to all" entry and
// rebuilds. Main loop only.
func (e *Engine) SetApplyAllEntry(enabled bool) {
	if e.applyAll == enabled {
		return
	}
	e.applyAll = enabled
	e.ReloadMenus()
}

// BuildMenu returns the cached profile for a frame kind. Table frames
// share the file profile.
func (e *Engine) BuildMenu(kind doc.Kind) *Profile {
	profiles := *e.profiles.Load()
	if p, ok := profiles[kind.Bucket()]; ok {
		return p
	}
	return profiles[doc.KindOther]
}

// ReloadMenus rebuilds every cached profile from scratch and swaps the
// set in atomically.
func (e *Engine) ReloadMenus() {
	e.version++
	pipelines := e.source.Pipelines()

	fresh := make(map[doc.Kind]*Profile, len(profileKinds))
	for _, kind := range profileKinds {
		fresh[kind] = e.compose(kind, pipelines)
	}
	e.profiles.Store(&fresh)
	logger.Debug("Menu: rebuilt %d profiles, version=%d, pipelines=%d", len(fresh), e.version, len(pipelines))
}

// compose builds one profile: the static template filtered by the
// current context, then the plugin segment with sequential ids from the
// kind's base offset, then the optional "apply to all" entry.
func (e *Engine) compose(kind doc.Kind, pipelines []plugin.Pipeline) *Profile {
	base := pluginBaseFor(kind)
	p := &Profile{
		Kind:       kind,
		PluginBase: base,
		Version:    e.version,
		pipelines:  pipelines,
	}

	for _, entry := range menuTemplates[kind] {
		if entry.Mask&Mask(e.context) == 0 {
			continue
		}
		p.Entries = append(p.Entries, entry)
	}

	for i, pl := range pipelines {
		p.Entries = append(p.Entries, Entry{
			ID:       base + i,
			Mask:     MaskAll,
			Label:    pl.Label,
			Pipeline: pl.Name,
		})
	}

	if e.applyAll {
		p.ApplyAllID = base + len(pipelines)
		p.Entries = append(p.Entries, Entry{
			ID:    p.ApplyAllID,
			Mask:  MaskAll,
			Label: "Apply to All",
		})
	}
	return p
}
