package syntax

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/loom/internal/logging"
	"github.com/dshills/loom/rope"
	"github.com/dshills/loom/text"
)

// ChangesFunc reports the changes between two versions, oldest first. The
// boolean is false when the window has been evicted, in which case a
// stale parse result cannot be rebased and is discarded.
type ChangesFunc func(after, upto text.Version) ([]text.Change, bool)

// Map owns the syntax tree for one buffer. Edits invalidate ranges and
// schedule a background parse against an immutable snapshot; at most one
// parse is in flight at a time. A result that lands after further edits
// is rebased onto the current version when possible, otherwise discarded,
// and either way a fresh parse covers the remaining dirty ranges.
//
// All methods are safe for concurrent use.
type Map struct {
	mu      sync.Mutex
	lang    *Language
	sched   Scheduler
	changes ChangesFunc
	logger  *log.Logger

	version  text.Version
	snap     rope.Rope
	tree     *Tree
	dirty    []text.Range // in version's coordinates, not yet reflected in tree
	inFlight *parseJob
	lastErr  error
}

type parseJob struct {
	base   text.Version
	src    string
	old    *Tree
	edited []text.Range
	done   chan struct{}
}

// NewMap builds a Map for lang. sched runs background parses and changes
// resolves version windows for rebasing; both must be non-nil.
func NewMap(lang *Language, sched Scheduler, changes ChangesFunc) *Map {
	return &Map{
		lang:    lang,
		sched:   sched,
		changes: changes,
		logger:  logging.Default(),
	}
}

// SetLogger replaces the logger used for parse failures.
func (m *Map) SetLogger(l *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// Language returns the language the map parses with.
func (m *Map) Language() *Language { return m.lang }

// Tree returns the most recently installed tree, which may trail the
// buffer by in-flight edits. Nil before the first parse completes.
func (m *Map) Tree() *Tree {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree
}

// Err returns the most recent parse failure, or nil if the last parse
// succeeded.
func (m *Map) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// IsParsing reports whether a parse is scheduled or running.
func (m *Map) IsParsing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight != nil
}

// Reset marks the whole text dirty and schedules a full parse. Used when
// a buffer first gains a language.
func (m *Map) Reset(snap rope.Rope, version text.Version) {
	m.mu.Lock()
	m.snap = snap
	m.version = version
	m.dirty = []text.Range{{Start: 0, End: snap.Len()}}
	job := m.startLocked()
	m.mu.Unlock()
	m.launch(job)
}

// Invalidate records a batch of changes, shifting previously dirty ranges
// into the new version's coordinates, and schedules a parse if none is in
// flight. snap and version describe the text after the changes.
func (m *Map) Invalidate(changes []text.Change, snap rope.Rope, version text.Version) {
	m.mu.Lock()
	for _, c := range changes {
		for i := range m.dirty {
			m.dirty[i].Start = c.TransformOffset(m.dirty[i].Start, false)
			m.dirty[i].End = c.TransformOffset(m.dirty[i].End, true)
		}
		m.dirty = append(m.dirty, c.NewRange)
	}
	m.dirty = mergeRanges(m.dirty)
	m.snap = snap
	m.version = version
	job := m.startLocked()
	m.mu.Unlock()
	m.launch(job)
}

// Wait blocks until no parse is in flight or the timeout elapses,
// reporting whether the map went idle.
func (m *Map) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		job := m.inFlight
		m.mu.Unlock()
		if job == nil {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-job.done:
			timer.Stop()
		case <-timer.C:
			return false
		}
	}
}

// ParseSync parses the current snapshot on the calling goroutine and
// installs the result, superseding any in-flight background parse. Used
// when a caller needs an up-to-date tree now, such as autoindent after a
// large edit.
func (m *Map) ParseSync() error {
	m.mu.Lock()
	snap, version, old := m.snap, m.version, m.tree
	m.mu.Unlock()

	root, err := m.lang.Grammar.Parse(snap.String(), old, nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastErr = fmt.Errorf("%w: %v", ErrParseFailure, err)
		m.logger.Warn("foreground parse failed", "language", m.lang.Name, "err", err)
		return m.lastErr
	}
	if version == m.version {
		m.tree = &Tree{Root: root, Version: version}
		m.dirty = nil
		m.lastErr = nil
	}
	return nil
}

// startLocked begins a parse job for the dirty ranges if none is running.
// The caller must hold m.mu and pass the returned job to launch after
// unlocking.
func (m *Map) startLocked() *parseJob {
	if m.inFlight != nil || len(m.dirty) == 0 {
		return nil
	}
	job := &parseJob{
		base:   m.version,
		src:    m.snap.String(),
		old:    m.tree,
		edited: slices.Clone(m.dirty),
		done:   make(chan struct{}),
	}
	m.inFlight = job
	return job
}

func (m *Map) launch(job *parseJob) {
	if job == nil {
		return
	}
	m.sched.Go(func() {
		root, err := m.lang.Grammar.Parse(job.src, job.old, job.edited)
		m.complete(job, root, err)
	})
}

// complete merges a finished parse. Results from the current version
// install directly; stale results are rebased through the intervening
// changes, and the still-dirty ranges get a follow-up parse either way.
func (m *Map) complete(job *parseJob, root *Node, err error) {
	m.mu.Lock()
	m.inFlight = nil
	var next *parseJob
	if err != nil {
		m.lastErr = fmt.Errorf("%w: %v", ErrParseFailure, err)
		m.logger.Warn("parse failed", "language", m.lang.Name, "err", err)
	} else {
		parsed := &Tree{Root: root, Version: job.base}
		if job.base == m.version {
			m.tree = parsed
			m.dirty = nil
			m.lastErr = nil
		} else {
			if m.tree == nil || m.tree.Version < m.version {
				if changes, ok := m.changes(job.base, m.version); ok {
					if rebased, ok := parsed.rebase(changes, m.version); ok {
						m.tree = rebased
					}
				}
			}
			next = m.startLocked()
		}
	}
	m.mu.Unlock()
	close(job.done)
	m.launch(next)
}

// mergeRanges sorts ranges and coalesces overlapping or touching ones.
func mergeRanges(ranges []text.Range) []text.Range {
	if len(ranges) < 2 {
		return ranges
	}
	slices.SortFunc(ranges, func(a, b text.Range) int { return a.Start - b.Start })
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
