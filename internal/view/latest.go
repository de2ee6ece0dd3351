package view

import (
	"sync"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
)

// Snapshot is one derived set of records together with the filter tag that
// produced it.
type Snapshot struct {
	Tag     string
	Records []domain.Sighting
}

// Latest holds the most recently applied snapshot with last-write-wins
// semantics. A refresh begun under one filter tag is discarded if the tag
// has moved on by the time it completes, so a slow stale fetch can never
// overwrite a newer result. This is the only ordering guarantee the
// pipelines need; they hold no shared mutable state themselves.
type Latest struct {
	mu         sync.Mutex
	currentTag string
	generation uint64
	snapshot   Snapshot
	hasData    bool
}

// NewLatest creates a guard pinned to the given initial filter tag.
func NewLatest(tag string) *Latest {
	return &Latest{currentTag: tag}
}

// SetTag records a new current filter state. Any in-flight refresh started
// under an older tag or generation will be discarded on completion. The
// previous snapshot is cleared rather than left stale, so readers never see
// results that do not match the active filter state.
func (l *Latest) SetTag(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tag == l.currentTag {
		return
	}
	l.currentTag = tag
	l.generation++
	l.snapshot = Snapshot{}
	l.hasData = false
}

// Begin marks the start of a refresh and returns the generation token the
// result must be applied under.
func (l *Latest) Begin() (tag string, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTag, l.generation
}

// Apply installs a completed refresh. It reports false, without applying,
// when the filter state has changed since the matching Begin.
func (l *Latest) Apply(tag string, generation uint64, records []domain.Sighting) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tag != l.currentTag || generation != l.generation {
		return false
	}
	l.snapshot = Snapshot{Tag: tag, Records: records}
	l.hasData = true
	return true
}

// Current returns the applied snapshot, or false when no refresh matching
// the current filter state has completed.
func (l *Latest) Current() (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot, l.hasData
}
