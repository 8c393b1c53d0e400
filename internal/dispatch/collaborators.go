package dispatch

// Collaborator contracts consumed by the dispatcher. The diff/merge
// engine, the rendering layers, and the user-facing prompt all live
// outside the core; these interfaces are their request/response
// surface.

// Confirmer asks the user whether to proceed with opening large
// sources. The call is synchronous on the main loop.
type Confirmer interface {
	ConfirmProceed(locations []string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(locations []string) bool

func (f ConfirmerFunc) ConfirmProceed(locations []string) bool { return f(locations) }

// Recents is the externally persisted most-recently-used history. The
// core only calls it, never reads it back.
type Recents interface {
	AddRecent(kindKey, item string, maxItems int)
}

// ClipboardSource supplies captured clipboard buffers for clipboard
// comparison, newest first.
type ClipboardSource interface {
	Buffers(n int) ([][]byte, error)
}

// PatchWriter is the diff engine's report surface: it renders the
// comparison of the given source locations into a patch/report file.
type PatchWriter interface {
	WritePatch(locations []string, reportPath string) error
}
