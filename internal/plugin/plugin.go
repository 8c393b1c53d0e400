// Package plugin loads the unpacker/prediffer pipeline registry from
// YAML manifests. Each manifest file in the plugin directory declares
// one pipeline; load order is sorted file order, which is the
// registration order the menu engine relies on.
package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"collate/internal/errors"
	"collate/internal/logger"
)

// Event names the hook a pipeline participates in.
type Event string

const (
	// EventUnpacker transforms packed content before comparison.
	EventUnpacker Event = "unpacker"
	// EventPrediffer normalizes content before the diff runs.
	EventPrediffer Event = "prediffer"
)

// Pipeline is one enabled content-transform plugin.
type Pipeline struct {
	Name    string `yaml:"name"`
	Label   string `yaml:"label"`
	Event   Event  `yaml:"event"`
	Command string `yaml:"command"`
}

// Registry holds the currently loaded pipelines in registration order.
type Registry struct {
	mu        sync.RWMutex
	dir       string
	pipelines []Pipeline
}

// NewRegistry creates a registry reading manifests from dir. The
// directory not existing yet is fine; Reload simply finds nothing.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Reload re-reads every manifest from disk, replacing the current list.
// A malformed manifest fails the whole reload and leaves the previous
// list in place.
func (r *Registry) Reload() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.pipelines = nil
			r.mu.Unlock()
			return nil
		}
		return errors.PluginLoadFailed(r.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	loaded := make([]Pipeline, 0, len(names))
	for _, name := range names {
		path := filepath.Join(r.dir, name)
		p, err := loadManifest(path)
		if err != nil {
			return err
		}
		loaded = append(loaded, p)
	}

	r.mu.Lock()
	r.pipelines = loaded
	r.mu.Unlock()
	logger.Info("Plugin: loaded %d pipeline(s) from %s", len(loaded), r.dir)
	return nil
}

func loadManifest(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, errors.PluginLoadFailed(path, err)
	}
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pipeline{}, errors.PluginLoadFailed(path, err)
	}
	if p.Name == "" {
		return Pipeline{}, errors.PluginInvalid(path, "pipeline name is required")
	}
	if p.Event != EventUnpacker && p.Event != EventPrediffer {
		return Pipeline{}, errors.PluginInvalid(path, "event must be unpacker or prediffer")
	}
	if p.Label == "" {
		p.Label = p.Name
	}
	return p, nil
}

// Pipelines returns the loaded pipelines in registration order.
func (r *Registry) Pipelines() []Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pipeline, len(r.pipelines))
	copy(out, r.pipelines)
	return out
}

// ByEvent returns the loaded pipelines for one event, in registration
// order.
func (r *Registry) ByEvent(event Event) []Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Pipeline
	for _, p := range r.pipelines {
		if p.Event == event {
			out = append(out, p)
		}
	}
	return out
}
