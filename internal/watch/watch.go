// Package watch maps comparison documents to watched directory paths
// and delivers change notifications for them.
//
// The underlying fsnotify watcher runs on a background goroutine.
// Rapid events are coalesced into change batches; each dependent
// document receives at most one notification per batch, posted to the
// Events channel. The channel is consumed by the main loop, which is
// the only place document state may be touched.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"collate/internal/errors"
	"collate/internal/logger"
)

// Notification reports that one or more of a document's watched paths
// changed. Batch identifies the change batch; delivery order across
// documents within a batch is unspecified.
type Notification struct {
	DocID string
	Paths []string
	Batch int
}

// Coordinator owns the document→paths and path→documents maps and the
// background fsnotify watcher.
type Coordinator struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	docPaths map[string]map[string]bool
	pathDocs map[string]map[string]bool

	debounce time.Duration
	events   chan Notification
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// defaultDebounce coalesces rapid saves into one batch.
const defaultDebounce = 500 * time.Millisecond

// NewCoordinator creates a coordinator with its own fsnotify watcher.
func NewCoordinator() (*Coordinator, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.E(errors.Op("watch.NewCoordinator"), errors.KindWatchSubscription, err)
	}
	return &Coordinator{
		fw:       fw,
		docPaths: make(map[string]map[string]bool),
		pathDocs: make(map[string]map[string]bool),
		debounce: defaultDebounce,
		events:   make(chan Notification, 64),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Events returns the notification channel consumed by the main loop.
func (c *Coordinator) Events() <-chan Notification {
	return c.events
}

// Start begins background delivery. Safe to call once.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()
	go c.run()
}

// Stop shuts the background goroutine down and closes the watcher.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		c.fw.Close()
		return
	}
	c.running = false
	c.mu.Unlock()
	close(c.stopCh)
	<-c.doneCh
	c.fw.Close()
}

// Watch subscribes the document to the given directory paths.
// Re-watching an already-watched path is a no-op. A failed subscription
// is non-fatal: the error is returned for logging, the document simply
// opens without that watch, and any paths subscribed earlier in the
// call remain subscribed.
func (c *Coordinator) Watch(docID string, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.docPaths[docID] == nil {
		c.docPaths[docID] = make(map[string]bool)
	}
	var firstErr error
	for _, p := range paths {
		p = filepath.Clean(p)
		if c.docPaths[docID][p] {
			continue
		}
		if len(c.pathDocs[p]) == 0 {
			if err := c.fw.Add(p); err != nil {
				if firstErr == nil {
					firstErr = errors.WatchFailed(p, err)
				}
				continue
			}
			logger.Debug("Watch: watching %s", p)
		}
		c.docPaths[docID][p] = true
		if c.pathDocs[p] == nil {
			c.pathDocs[p] = make(map[string]bool)
		}
		c.pathDocs[p][docID] = true
	}
	return firstErr
}

// Unwatch removes all of the document's subscriptions. Any path left
// with no dependents releases the underlying watch resource.
func (c *Coordinator) Unwatch(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for p := range c.docPaths[docID] {
		delete(c.pathDocs[p], docID)
		if len(c.pathDocs[p]) == 0 {
			delete(c.pathDocs, p)
			if err := c.fw.Remove(p); err != nil {
				logger.Debug("Watch: remove %s: %v", p, err)
			} else {
				logger.Debug("Watch: released %s", p)
			}
		}
	}
	delete(c.docPaths, docID)
}

// WatchedPaths returns the paths the document is subscribed to.
func (c *Coordinator) WatchedPaths(docID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for p := range c.docPaths[docID] {
		out = append(out, p)
	}
	return out
}

// Dependents returns the documents subscribed to a path.
func (c *Coordinator) Dependents(path string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for id := range c.pathDocs[filepath.Clean(path)] {
		out = append(out, id)
	}
	return out
}

// run is the background delivery loop. It accumulates changed watched
// paths during the debounce window, then flushes one batch.
func (c *Coordinator) run() {
	defer close(c.doneCh)

	batch := 0
	pending := make(map[string]bool)
	var flush <-chan time.Time

	for {
		select {
		case ev, ok := <-c.fw.Events:
			if !ok {
				return
			}
			if p, matched := c.watchedPathFor(ev.Name); matched {
				pending[p] = true
				if flush == nil {
					flush = time.After(c.debounce)
				}
			}
		case err, ok := <-c.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch: watcher error: %v", err)
		case <-flush:
			batch++
			c.deliver(pending, batch)
			pending = make(map[string]bool)
			flush = nil
		case <-c.stopCh:
			return
		}
	}
}

// watchedPathFor maps an event path back to the watched directory.
func (c *Coordinator) watchedPathFor(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name = filepath.Clean(name)
	if len(c.pathDocs[name]) > 0 {
		return name, true
	}
	dir := filepath.Dir(name)
	if len(c.pathDocs[dir]) > 0 {
		return dir, true
	}
	return "", false
}

// deliver posts one notification per dependent document for the batch.
func (c *Coordinator) deliver(changed map[string]bool, batch int) {
	c.mu.Lock()
	perDoc := make(map[string][]string)
	for p := range changed {
		for id := range c.pathDocs[p] {
			perDoc[id] = append(perDoc[id], p)
		}
	}
	c.mu.Unlock()

	for id, paths := range perDoc {
		n := Notification{DocID: id, Paths: paths, Batch: batch}
		select {
		case c.events <- n:
		default:
			// Main loop is not draining; dropping is preferable to
			// stalling the watcher goroutine.
			logger.Warn("Watch: dropped notification for doc=%s batch=%d", id, batch)
		}
	}
}
