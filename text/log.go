package text

import "sync"

// DefaultLogCapacity bounds the number of changes a Log retains.
const DefaultLogCapacity = 10000

// Log is a bounded, in-order record of the changes applied to one buffer.
// Anchor resolution replays slices of the log to carry positions between
// versions. Once the capacity is exceeded the oldest changes are evicted;
// anchors older than the retained window can no longer be resolved.
type Log struct {
	mu      sync.RWMutex
	changes []Change // ring buffer
	head    int      // index of the oldest entry
	count   int
	evicted Version // highest version evicted from the log
}

// NewLog creates a change log retaining up to capacity changes.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{changes: make([]Change, capacity)}
}

// Append records a change. Changes must be appended in version order.
func (l *Log) Append(c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.head + l.count) % len(l.changes)
	if l.count < len(l.changes) {
		l.count++
	} else {
		l.evicted = l.changes[l.head].Version
		l.head = (l.head + 1) % len(l.changes)
	}
	l.changes[idx] = c
}

// Between returns, in order, every change with after < version <= upto.
// ok is false when the log has evicted part of the requested window.
func (l *Log) Between(after, upto Version) (changes []Change, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if after < l.evicted {
		return nil, false
	}
	for i := 0; i < l.count; i++ {
		c := l.changes[(l.head+i)%len(l.changes)]
		if c.Version > after && c.Version <= upto {
			changes = append(changes, c)
		}
	}
	return changes, true
}

// Len returns the number of retained changes.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
