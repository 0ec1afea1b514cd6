// Package imglist maintains the ordered collection of discoverable image
// sources and its navigation operations. The list is a doubly linked chain of
// entries with a side map for O(1) source lookup; entry pointers are stable
// identities for the lifetime of their membership.
//
// The list carries one explicit lock shared with the payload caches. Callers
// must hold it across any read-then-act sequence that races with background
// preloading; the methods themselves do not lock.
package imglist

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"glance/internal/loader"
)

// Source identifies one image source: an absolute file path, the stdin
// marker "-", or an "exec:" shell command. It is the list's dedup key.
type Source string

// IsStdin reports whether the source is the stdin marker.
func (s Source) IsStdin() bool { return string(s) == loader.StdinSource }

// IsExec reports whether the source captures a shell command's stdout.
func (s Source) IsExec() bool { return strings.HasPrefix(string(s), loader.ExecPrefix) }

// Dir returns the parent-directory prefix up to the last path separator.
// Separator-less sources, stdin, and exec commands form the implicit root
// group and return "".
func (s Source) Dir() string {
	if s.IsStdin() || s.IsExec() {
		return ""
	}
	if i := strings.LastIndex(string(s), "/"); i > 0 {
		return string(s)[:i]
	}
	return ""
}

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Entry is one list node: a source plus its position and, once decoded, its
// payload. The payload is attached and detached as the entry moves through
// the caches; the node itself survives until removal.
type Entry struct {
	Source  Source
	Ordinal int // 1-based, contiguous; recomputed on every structural change
	Size    int64
	Mtime   time.Time
	Payload *loader.Image

	prev, next *Entry
}

// List is the ordered, mutable collection of entries.
type List struct {
	mu         sync.Mutex
	head, tail *Entry
	bySource   map[Source]*Entry
	count      int
	order      Order
	rng        *rand.Rand
	logger     LoggerFunc
}

// New creates an empty list with the given insertion order.
func New(order Order, logger LoggerFunc) *List {
	if logger == nil {
		logger = func(string) {}
	}
	return &List{
		bySource: make(map[Source]*Entry),
		order:    order,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// SetRandSource replaces the list's random source. Tests use it to make
// random order and Rand() deterministic.
func (l *List) SetRandSource(src rand.Source) { l.rng = rand.New(src) }

// Lock acquires the list lock. The same lock guards the payload caches.
func (l *List) Lock() { l.mu.Lock() }

// Unlock releases the list lock.
func (l *List) Unlock() { l.mu.Unlock() }

// Len returns the number of entries.
func (l *List) Len() int { return l.count }

// First returns the first entry, or nil when the list is empty.
func (l *List) First() *Entry { return l.head }

// Last returns the last entry, or nil when the list is empty.
func (l *List) Last() *Entry { return l.tail }

// Order returns the configured insertion order.
func (l *List) Order() Order { return l.order }

// Find returns the entry with exactly the given source, or nil.
func (l *List) Find(source Source) *Entry {
	return l.bySource[source]
}

// Add inserts a new entry for source at its ordered position and returns it.
// Adding an already-present source is idempotent and returns the existing
// entry. info may be nil for non-file sources; it supplies size and mtime
// for the corresponding orderings.
func (l *List) Add(source Source, info os.FileInfo) *Entry {
	if existing := l.bySource[source]; existing != nil {
		return existing
	}
	e := &Entry{Source: source}
	if info != nil {
		e.Size = info.Size()
		e.Mtime = info.ModTime()
	}
	l.insert(e)
	l.bySource[source] = e
	l.count++
	l.renumber()
	return e
}

// Remove unlinks the entry, dropping any payload it still owns, and
// renumbers the remainder. The caller must hold the list lock and must only
// remove entries it knows are members.
func (l *List) Remove(e *Entry) {
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.Payload = nil
	delete(l.bySource, e.Source)
	l.count--
	l.renumber()
	l.logger(fmt.Sprintf("list: removed %s, %d remaining", e.Source, l.count))
}

// insert links e at the position the configured order dictates.
func (l *List) insert(e *Entry) {
	switch l.order {
	case OrderNone:
		l.pushBack(e)
	case OrderRandom:
		l.insertAt(e, l.rng.Intn(l.count+1))
	default:
		at := l.head
		for at != nil && !l.order.less(e, at) {
			at = at.next
		}
		l.insertBefore(e, at)
	}
}

func (l *List) pushBack(e *Entry) {
	e.prev = l.tail
	if l.tail != nil {
		l.tail.next = e
	} else {
		l.head = e
	}
	l.tail = e
}

// insertBefore links e before at; a nil at means append.
func (l *List) insertBefore(e, at *Entry) {
	if at == nil {
		l.pushBack(e)
		return
	}
	e.next = at
	e.prev = at.prev
	if at.prev != nil {
		at.prev.next = e
	} else {
		l.head = e
	}
	at.prev = e
}

func (l *List) insertAt(e *Entry, pos int) {
	at := l.head
	for i := 0; i < pos && at != nil; i++ {
		at = at.next
	}
	l.insertBefore(e, at)
}

// renumber reassigns contiguous 1..N ordinals. Eager recomputation keeps
// Distance an O(1) ordinal subtraction.
func (l *List) renumber() {
	n := 0
	for e := l.head; e != nil; e = e.next {
		n++
		e.Ordinal = n
	}
}

// Sources returns the sources in list order. Diagnostic helper for logging
// and the CLI table; callers should hold the lock.
func (l *List) Sources() []Source {
	out := make([]Source, 0, l.count)
	for e := l.head; e != nil; e = e.next {
		out = append(out, e.Source)
	}
	return out
}
