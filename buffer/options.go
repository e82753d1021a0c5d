package buffer

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/loom/syntax"
)

// DefaultSyncParseTimeout bounds how long a caller that needs a current
// syntax tree waits for the background parse before parsing in the
// foreground.
const DefaultSyncParseTimeout = 50 * time.Millisecond

// DefaultTabWidth is the indent width used when no option overrides it.
const DefaultTabWidth = 4

// Option configures a Buffer at construction.
type Option func(*Buffer)

// WithLanguage attaches a language; the buffer parses in the background
// and supports autoindent and bracket matching. Without one, those
// operations are no-ops.
func WithLanguage(lang *syntax.Language) Option {
	return func(b *Buffer) { b.lang = lang }
}

// WithScheduler replaces the scheduler that runs background parses.
func WithScheduler(sched syntax.Scheduler) Option {
	return func(b *Buffer) { b.sched = sched }
}

// WithTabWidth sets the soft-tab indent width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.settings.TabWidth = width
		}
	}
}

// WithHardTabs switches indentation to tab characters.
func WithHardTabs(hard bool) Option {
	return func(b *Buffer) { b.settings.HardTabs = hard }
}

// WithHistoryDepth bounds the undo stack.
func WithHistoryDepth(n int) Option {
	return func(b *Buffer) { b.historyDepth = n }
}

// WithLogCapacity bounds the edit log ring buffer. Anchors older than the
// retained window panic on resolution.
func WithLogCapacity(n int) Option {
	return func(b *Buffer) { b.logCapacity = n }
}

// WithLogger replaces the logger used on degrade paths.
func WithLogger(l *log.Logger) Option {
	return func(b *Buffer) { b.logger = l }
}
