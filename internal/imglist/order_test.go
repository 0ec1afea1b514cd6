package imglist

import (
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"img2", "img10", -1},
		{"img10", "img2", 1},
		{"img2", "img2", 0},
		{"img02", "img2", 0}, // leading zeros compare equal
		{"img2a", "img2b", -1},
		{"a", "b", -1},
		{"img", "img1", -1},
		{"1", "a", -1}, // digits sort before letters byte-wise
		{"x9y", "x10y", -1},
	}
	for _, tc := range tests {
		got := numericCompare(tc.a, tc.b)
		assert.Equal(t, tc.want, sign(got), "numericCompare(%q, %q)", tc.a, tc.b)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestOrderNameInsertion(t *testing.T) {
	l := New(OrderName, nil)
	for _, s := range []string{"c.png", "a.png", "b.png"} {
		l.Add(Source(s), nil)
	}
	assert.Equal(t, []Source{"a.png", "b.png", "c.png"}, l.Sources())
}

func TestOrderNumericInsertion(t *testing.T) {
	l := New(OrderNumeric, nil)
	for _, s := range []string{"img10.png", "img2.png", "img1.png"} {
		l.Add(Source(s), nil)
	}
	assert.Equal(t, []Source{"img1.png", "img2.png", "img10.png"}, l.Sources())
}

// fakeInfo satisfies os.FileInfo for ordering tests.
type fakeInfo struct {
	size  int64
	mtime time.Time
}

func (f fakeInfo) Name() string       { return "fake" }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() os.FileMode  { return 0 }
func (f fakeInfo) ModTime() time.Time { return f.mtime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

func TestOrderBySize(t *testing.T) {
	l := New(OrderSize, nil)
	l.Add("big.png", fakeInfo{size: 300})
	l.Add("small.png", fakeInfo{size: 10})
	l.Add("mid.png", fakeInfo{size: 100})
	assert.Equal(t, []Source{"small.png", "mid.png", "big.png"}, l.Sources())
}

func TestOrderByMtime(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := New(OrderMtime, nil)
	l.Add("new.png", fakeInfo{mtime: base.Add(2 * time.Hour)})
	l.Add("old.png", fakeInfo{mtime: base})
	l.Add("mid.png", fakeInfo{mtime: base.Add(time.Hour)})
	assert.Equal(t, []Source{"old.png", "mid.png", "new.png"}, l.Sources())
}

func TestOrderRandomKeepsAllEntries(t *testing.T) {
	l := New(OrderRandom, nil)
	l.SetRandSource(rand.NewSource(7))
	want := map[Source]bool{"a": true, "b": true, "c": true, "d": true, "e": true}
	for s := range want {
		l.Add(s, nil)
	}
	require.Equal(t, 5, l.Len())
	got := map[Source]bool{}
	for e := l.First(); e != nil; e = l.Next(e, false) {
		got[e.Source] = true
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 5, l.Last().Ordinal)
}

func TestParseOrder(t *testing.T) {
	for name, want := range map[string]Order{
		"none": OrderNone, "name": OrderName, "numeric": OrderNumeric,
		"mtime": OrderMtime, "size": OrderSize, "random": OrderRandom,
	} {
		got, err := ParseOrder(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	_, err := ParseOrder("bogus")
	assert.Error(t, err)
}
