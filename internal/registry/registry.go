// Package registry tracks live comparison documents, one independent
// collection per frame kind. Cross-kind polymorphism is never needed by
// any consumer, so the kinds stay in separate insertion-ordered lists
// with identity lookup for reuse and same-kind enumeration for
// navigation.
//
// The registry is owned by the main-loop orchestrator and must only be
// mutated from that goroutine.
package registry

import (
	"collate/internal/doc"
	"collate/internal/logger"
)

// buckets are the independent collections: folder docs, text/table
// docs, binary docs, and the transient image and web frame lists.
var buckets = []doc.Kind{
	doc.KindFolder,
	doc.KindFile,
	doc.KindHex,
	doc.KindImage,
	doc.KindWebPage,
}

// RemoveHook is invoked when a document leaves the registry. Removal is
// the single point where watch unsubscription and temp-file reclamation
// are triggered.
type RemoveHook func(*doc.Document)

// Registry holds the per-kind document collections.
type Registry struct {
	docs  map[doc.Kind][]*doc.Document
	hooks []RemoveHook
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{docs: make(map[doc.Kind][]*doc.Document)}
	for _, k := range buckets {
		r.docs[k] = nil
	}
	return r
}

// OnRemove registers a hook called for every removed document.
func (r *Registry) OnRemove(hook RemoveHook) {
	r.hooks = append(r.hooks, hook)
}

// Insert adds a document to the collection for its kind. A document
// appears in exactly one collection for its lifetime.
func (r *Registry) Insert(d *doc.Document) {
	bucket := d.Kind.Bucket()
	r.docs[bucket] = append(r.docs[bucket], d)
	logger.Debug("Registry: inserted doc id=%s kind=%s key=%q", d.ID, d.Kind, d.Key())
}

// Remove takes a document out of its collection and fires the removal
// hooks. Removing an unknown document is a no-op.
func (r *Registry) Remove(id string) {
	for _, bucket := range buckets {
		list := r.docs[bucket]
		for i, d := range list {
			if d.ID != id {
				continue
			}
			r.docs[bucket] = append(list[:i:i], list[i+1:]...)
			logger.Debug("Registry: removed doc id=%s kind=%s", d.ID, d.Kind)
			for _, hook := range r.hooks {
				hook(d)
			}
			return
		}
	}
}

// FindReusable returns an existing document of the given kind opened on
// exactly the same normalized source locations, for "self-compare" and
// for re-focusing an already-open comparison instead of duplicating it.
func (r *Registry) FindReusable(kind doc.Kind, locations []string) (*doc.Document, bool) {
	key := doc.LocationKey(locations)
	for _, d := range r.docs[kind.Bucket()] {
		if d.Kind == kind && d.Key() == key {
			return d, true
		}
	}
	return nil, false
}

// Get returns the document with the given identity, if registered.
func (r *Registry) Get(id string) (*doc.Document, bool) {
	for _, bucket := range buckets {
		for _, d := range r.docs[bucket] {
			if d.ID == id {
				return d, true
			}
		}
	}
	return nil, false
}

// EnumerateByKind returns the stable, insertion-ordered list for a
// kind's collection. The returned slice must not be mutated.
func (r *Registry) EnumerateByKind(kind doc.Kind) []*doc.Document {
	return r.docs[kind.Bucket()]
}

// Len returns the total number of registered documents.
func (r *Registry) Len() int {
	n := 0
	for _, bucket := range buckets {
		n += len(r.docs[bucket])
	}
	return n
}

// Navigation over a kind's collection. Wraparound is disabled: moving
// past either end is a no-op reported as unavailable, not an error.

// First returns the first document in the kind's collection.
func (r *Registry) First(kind doc.Kind) (*doc.Document, bool) {
	list := r.docs[kind.Bucket()]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Last returns the last document in the kind's collection.
func (r *Registry) Last(kind doc.Kind) (*doc.Document, bool) {
	list := r.docs[kind.Bucket()]
	if len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1], true
}

// Next returns the document after the one with the given identity.
// Unavailable from the last document.
func (r *Registry) Next(kind doc.Kind, id string) (*doc.Document, bool) {
	list := r.docs[kind.Bucket()]
	for i, d := range list {
		if d.ID == id {
			if i+1 >= len(list) {
				return nil, false
			}
			return list[i+1], true
		}
	}
	return nil, false
}

// Prev returns the document before the one with the given identity.
// Unavailable from the first document.
func (r *Registry) Prev(kind doc.Kind, id string) (*doc.Document, bool) {
	list := r.docs[kind.Bucket()]
	for i, d := range list {
		if d.ID == id {
			if i == 0 {
				return nil, false
			}
			return list[i-1], true
		}
	}
	return nil, false
}
