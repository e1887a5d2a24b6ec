// Package registry persists local watch state so progress survives between
// sessions and offline use, independent of the AniList account sync.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/log"
)

const registryFileName = "registry.json"

// Entry is the locally tracked state for one show.
type Entry struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status,omitempty"`
	Progress  int       `json:"progress"`
	Score     float64   `json:"score,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	// Dirty marks progress recorded locally but not yet confirmed synced
	// to the remote tracker.
	Dirty bool `json:"dirty,omitempty"`
}

// Registry is a JSON-file backed store of watch entries keyed by show ID.
type Registry struct {
	mu      sync.Mutex
	path    string
	entries map[int]Entry
}

// Load reads the registry file, creating an empty registry when the file does
// not exist yet.  A corrupt file is logged and replaced with an empty
// registry rather than blocking playback.
func Load() (*Registry, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}

	r := &Registry{path: path, entries: make(map[int]Entry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn("Registry file is corrupt, starting from an empty registry", "path", path, "error", err)
		return r, nil
	}

	for _, entry := range entries {
		r.entries[entry.ID] = entry
	}
	return r, nil
}

// Get returns the entry for a show ID, if present.
func (r *Registry) Get(id int) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	return entry, ok
}

// Entries returns all entries ordered by most recently updated.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

// Put upserts an entry, stamps it, and writes the registry to disk.
func (r *Registry) Put(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.UpdatedAt = time.Now().UTC()
	r.entries[entry.ID] = entry
	return r.save()
}

// MarkSynced clears the dirty flag for a show after a confirmed remote sync.
func (r *Registry) MarkSynced(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil
	}
	entry.Dirty = false
	r.entries[id] = entry
	return r.save()
}

// DirtyEntries returns entries whose progress has not been synced remotely.
func (r *Registry) DirtyEntries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dirty []Entry
	for _, entry := range r.entries {
		if entry.Dirty {
			dirty = append(dirty, entry)
		}
	}
	sort.Slice(dirty, func(i, j int) bool {
		return dirty[i].UpdatedAt.Before(dirty[j].UpdatedAt)
	})
	return dirty
}

// save writes through a temp file and rename so a crash mid-write never
// leaves a truncated registry.  Callers must hold the mutex.
func (r *Registry) save() error {
	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}

func registryPath() (string, error) {
	if path := os.Getenv("TSUGI_REGISTRY_PATH"); path != "" {
		return path, nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, registryFileName), nil
}
