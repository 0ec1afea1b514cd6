package imglist

// Navigation over the list. All of these expect the caller to hold the list
// lock when racing with the preloader.

// Next returns the entry after e, wrapping to the first iff loop. It returns
// nil at the edge with loop off, and always when the list holds at most one
// entry.
func (l *List) Next(e *Entry, loop bool) *Entry {
	if e == nil || l.count <= 1 {
		return nil
	}
	if e.next != nil {
		return e.next
	}
	if loop {
		return l.head
	}
	return nil
}

// Prev returns the entry before e, wrapping to the last iff loop.
func (l *List) Prev(e *Entry, loop bool) *Entry {
	if e == nil || l.count <= 1 {
		return nil
	}
	if e.prev != nil {
		return e.prev
	}
	if loop {
		return l.tail
	}
	return nil
}

// NextDir returns the nearest following entry whose parent directory differs
// from e's, wrapping per loop. It returns nil when every entry shares one
// directory.
func (l *List) NextDir(e *Entry, loop bool) *Entry {
	if e == nil {
		return nil
	}
	dir := e.Source.Dir()
	for cur := l.Next(e, loop); cur != nil && cur != e; cur = l.Next(cur, loop) {
		if cur.Source.Dir() != dir {
			return cur
		}
	}
	return nil
}

// PrevDir is NextDir walking backward.
func (l *List) PrevDir(e *Entry, loop bool) *Entry {
	if e == nil {
		return nil
	}
	dir := e.Source.Dir()
	for cur := l.Prev(e, loop); cur != nil && cur != e; cur = l.Prev(cur, loop) {
		if cur.Source.Dir() != dir {
			return cur
		}
	}
	return nil
}

// Rand uniformly selects an entry different from e, unless e is the only
// one. A nil e picks uniformly over the whole list.
func (l *List) Rand(e *Entry) *Entry {
	if l.count == 0 {
		return nil
	}
	if e == nil {
		return l.at(l.rng.Intn(l.count))
	}
	if l.count == 1 {
		return e
	}
	k := l.rng.Intn(l.count - 1)
	for cur := l.head; cur != nil; cur = cur.next {
		if cur == e {
			continue
		}
		if k == 0 {
			return cur
		}
		k--
	}
	return nil
}

// Jump walks distance steps from e, forward when positive, backward when
// negative, never wrapping. Zero returns e; running off an end returns nil.
func (l *List) Jump(e *Entry, distance int) *Entry {
	cur := e
	for cur != nil && distance > 0 {
		cur = cur.next
		distance--
	}
	for cur != nil && distance < 0 {
		cur = cur.prev
		distance++
	}
	return cur
}

// Distance returns the signed number of steps from a to b in list order.
// Ordinals are kept contiguous, so this is a subtraction.
func (l *List) Distance(a, b *Entry) int {
	if a == nil || b == nil {
		return 0
	}
	return b.Ordinal - a.Ordinal
}

func (l *List) at(idx int) *Entry {
	cur := l.head
	for i := 0; i < idx && cur != nil; i++ {
		cur = cur.next
	}
	return cur
}
