package imglist

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glance/internal/loader"
)

func buildList(t *testing.T, order Order, sources ...string) (*List, []*Entry) {
	t.Helper()
	l := New(order, nil)
	entries := make([]*Entry, 0, len(sources))
	for _, s := range sources {
		e := l.Add(Source(s), nil)
		require.NotNil(t, e)
		entries = append(entries, e)
	}
	return l, entries
}

func TestAddDedup(t *testing.T) {
	l, _ := buildList(t, OrderNone, "a.png", "b.png")
	first := l.Find("a.png")
	require.NotNil(t, first)

	again := l.Add("a.png", nil)
	assert.Same(t, first, again, "adding an existing source must return the same entry")
	assert.Equal(t, 2, l.Len())
}

func TestNextPrevWrap(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png", "c.png")
	a, b, c := es[0], es[1], es[2]

	assert.Same(t, b, l.Next(a, false))
	assert.Same(t, a, l.Prev(b, false))

	// loop on: edges wrap
	assert.Same(t, a, l.Next(c, true))
	assert.Same(t, c, l.Prev(a, true))

	// loop off: edges are terminal
	assert.Nil(t, l.Next(c, false))
	assert.Nil(t, l.Prev(a, false))
}

func TestNextOnSingleEntry(t *testing.T) {
	l, es := buildList(t, OrderNone, "only.png")
	assert.Nil(t, l.Next(es[0], true))
	assert.Nil(t, l.Prev(es[0], true))
}

func TestRemoveKeepsOrdinalsContiguous(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png", "c.png")

	l.Remove(es[1])

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 1, es[0].Ordinal)
	assert.Equal(t, 2, es[2].Ordinal)
	assert.Nil(t, l.Find("b.png"))
}

func TestRemoveDropsPayload(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png")
	es[0].Payload = &loader.Image{}

	l.Remove(es[0])

	assert.Nil(t, es[0].Payload, "removal must release the decoded payload")
	assert.Equal(t, 1, l.Len())
}

func TestRemoveLastAndEmpty(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png")
	l.Remove(es[0])
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
}

func TestDirectoryNavigation(t *testing.T) {
	l, es := buildList(t, OrderNone,
		"/pics/dir1/a.png", "/pics/dir1/b.png", "/pics/dir2/c.png", "/pics/dir2/d.png")
	a, c := es[0], es[2]

	got := l.NextDir(a, false)
	assert.Same(t, c, got, "NextDir must land on the first entry of the next directory")

	// with loop, the last directory wraps back to the first
	assert.Same(t, a, l.NextDir(c, true))
	assert.Nil(t, l.NextDir(c, false))

	// backward: from dir2 the nearest different directory is dir1's tail
	assert.Same(t, es[1], l.PrevDir(c, false))
}

func TestDirNavigationSingleDirectory(t *testing.T) {
	l, es := buildList(t, OrderNone, "/d/a.png", "/d/b.png")
	assert.Nil(t, l.NextDir(es[0], true), "all entries share one directory")
	assert.Nil(t, l.PrevDir(es[1], true))
}

func TestRootGroupDir(t *testing.T) {
	assert.Equal(t, "", Source("plain.png").Dir())
	assert.Equal(t, "", Source("-").Dir())
	assert.Equal(t, "", Source("exec:curl http://x/y.png").Dir())
	assert.Equal(t, "/pics", Source("/pics/a.png").Dir())
}

func TestRandSelectsDifferentEntry(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png", "c.png")
	l.SetRandSource(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		got := l.Rand(es[0])
		require.NotNil(t, got)
		assert.NotSame(t, es[0], got)
	}
}

func TestRandSingleEntryReturnsSelf(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png")
	assert.Same(t, es[0], l.Rand(es[0]))
}

func TestJump(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png", "c.png", "d.png")

	assert.Same(t, es[2], l.Jump(es[0], 2))
	assert.Same(t, es[0], l.Jump(es[2], -2))
	assert.Same(t, es[1], l.Jump(es[1], 0))
	assert.Nil(t, l.Jump(es[2], 5), "jump never wraps")
	assert.Nil(t, l.Jump(es[1], -3))
}

func TestDistance(t *testing.T) {
	l, es := buildList(t, OrderNone, "a.png", "b.png", "c.png")
	assert.Equal(t, 2, l.Distance(es[0], es[2]))
	assert.Equal(t, -2, l.Distance(es[2], es[0]))
	assert.Equal(t, 0, l.Distance(es[1], es[1]))
}

func TestSourcesSnapshot(t *testing.T) {
	l, _ := buildList(t, OrderNone, "a.png", "b.png")
	assert.Equal(t, []Source{"a.png", "b.png"}, l.Sources())
}
