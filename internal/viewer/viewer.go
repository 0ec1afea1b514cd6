// Package viewer wires the image list, the payload caches, the decode
// dispatcher, and the thread pool into the acquisition flow: the requested
// image is served from cache or decoded synchronously, and a background
// preload task keeps the images after the current one decoded ahead of time.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"glance/internal/config"
	"glance/internal/imgcache"
	"glance/internal/imglist"
	"glance/internal/loader"
	"glance/internal/scan"
	"glance/internal/tpool"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// ErrExhausted is returned when navigation runs out of viewable images.
var ErrExhausted = errors.New("no viewable images remain")

// Viewer owns one acquisition pipeline. The image list lock also guards both
// caches and the current-entry pointer; the thread pool has its own disjoint
// queue lock.
type Viewer struct {
	cfg    config.Config
	logger LoggerFunc

	reg  *loader.Registry
	pool *tpool.Pool

	list    *imglist.List
	history *imgcache.Cache
	preload *imgcache.Cache

	current *imglist.Entry // guarded by the list lock

	preloadGen  atomic.Int64 // bumped per schedulePreload; stale passes exit
	decodes     atomic.Int64
	preloadHits atomic.Int64
	historyHits atomic.Int64
	removed     atomic.Int64
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Decodes     int64
	PreloadHits int64
	HistoryHits int64
	Removed     int64
	ListLen     int
	PreloadLen  int
	HistoryLen  int
	Workers     int
}

// New builds a viewer with the default decoder chain and a freshly started
// thread pool.
func New(cfg config.Config, logger LoggerFunc) *Viewer {
	if logger == nil {
		logger = func(string) {}
	}
	cfg = cfg.Normalize()
	v := &Viewer{
		cfg:     cfg,
		logger:  logger,
		reg:     loader.DefaultRegistry(loader.LoggerFunc(logger)),
		pool:    tpool.New(tpool.LoggerFunc(logger)),
		list:    imglist.New(cfg.Order, imglist.LoggerFunc(logger)),
		history: imgcache.New(cfg.HistoryCap),
		preload: imgcache.New(cfg.PreloadCap),
	}
	return v
}

// Setup builds a viewer and populates it from a directory scan.
func Setup(dir string, cfg config.Config, logger LoggerFunc) (*Viewer, error) {
	v := New(cfg, logger)
	if n := v.Scan(dir); n == 0 {
		v.Close()
		return nil, fmt.Errorf("no images found under %s", dir)
	}
	return v, nil
}

// Registry returns the decoder registry so callers can register their own
// chain before use.
func (v *Viewer) Registry() *loader.Registry { return v.reg }

// UseRegistry replaces the decoder registry. Call before any navigation.
func (v *Viewer) UseRegistry(reg *loader.Registry) { v.reg = reg }

// List exposes the underlying image list. Callers must follow its locking
// contract when the viewer is live.
func (v *Viewer) List() *imglist.List { return v.list }

// Scan discovers image files under dir per the configured recursion flag and
// adds them to the list. It returns the number of discovered files.
func (v *Viewer) Scan(dir string) int {
	count := 0
	for item := range scan.Run(dir, v.cfg.Recursive, scan.LoggerFunc(v.logger)) {
		v.list.Lock()
		v.list.Add(imglist.Source(item.Path), item.Info)
		v.list.Unlock()
		count++
	}
	return count
}

// AddSource inserts a single source (path, "-", or "exec:" command) into the
// list and returns its entry.
func (v *Viewer) AddSource(src imglist.Source) *imglist.Entry {
	var info os.FileInfo
	if !src.IsStdin() && !src.IsExec() {
		if fi, err := os.Stat(string(src)); err == nil {
			info = fi
		}
	}
	v.list.Lock()
	defer v.list.Unlock()
	return v.list.Add(src, info)
}

// Current returns the displayed entry, or nil before the first Show.
func (v *Viewer) Current() *imglist.Entry {
	v.list.Lock()
	defer v.list.Unlock()
	return v.current
}

// Info is a lock-consistent snapshot of the displayed entry. Presentation
// code must use it instead of dereferencing the entry, because the preloader
// mutates ordinals and payloads concurrently.
type Info struct {
	Source  imglist.Source
	Ordinal int
	Total   int
	Decoded bool
	Width   int
	Height  int
	Frames  int
	Meta    []loader.MetaLine
}

// CurrentInfo snapshots the displayed entry under the list lock. The second
// return is false before the first Show.
func (v *Viewer) CurrentInfo() (Info, bool) {
	v.list.Lock()
	defer v.list.Unlock()
	e := v.current
	if e == nil {
		return Info{}, false
	}
	info := Info{Source: e.Source, Ordinal: e.Ordinal, Total: v.list.Len()}
	if p := e.Payload; p != nil {
		info.Decoded = true
		info.Width = p.Width
		info.Height = p.Height
		info.Frames = len(p.Frames)
		info.Meta = append([]loader.MetaLine(nil), p.Meta...)
	}
	return info, true
}

// Len returns the number of listed sources.
func (v *Viewer) Len() int {
	v.list.Lock()
	defer v.list.Unlock()
	return v.list.Len()
}

// Show makes e the displayed entry. The payload comes from the preload or
// history cache when present; otherwise the bytes are acquired and decoded
// synchronously, blocking the caller, because the user-requested image must
// appear immediately. A failed entry is removed from the list and an error
// returned. On success the previously displayed entry moves into history and
// the preloader is resubmitted.
func (v *Viewer) Show(e *imglist.Entry) (*imglist.Entry, error) {
	if e == nil {
		return nil, ErrExhausted
	}
	v.list.Lock()
	prev := v.current
	if e.Payload == nil {
		// cache miss: decode outside the lock, then re-verify identity
		src := e.Source
		v.list.Unlock()
		img, status, err := v.reg.FromSource(context.Background(), string(src))
		v.list.Lock()
		if v.list.Find(src) != e {
			v.list.Unlock()
			return nil, fmt.Errorf("%s was removed during decode", src)
		}
		if status != loader.Success {
			v.dropEntry(e)
			v.list.Unlock()
			return nil, fmt.Errorf("load %s (%s): %w", src, status, err)
		}
		if e.Payload == nil { // the preloader may have won the race
			v.decodes.Add(1)
			e.Payload = img
		}
	}
	// claim ownership from whichever cache holds the payload
	if v.preload.Out(e) {
		v.preloadHits.Add(1)
	} else if v.history.Out(e) {
		v.historyHits.Add(1)
	}
	if prev != nil && prev != e {
		v.history.Put(prev)
	}
	v.current = e
	v.list.Unlock()
	v.schedulePreload()
	return e, nil
}

// navigate repeatedly picks a target from the live current entry and tries
// to show it, skipping entries that fail to load until the pick function
// returns nothing (terminal failure) or an entry is displayed.
func (v *Viewer) navigate(pick func(cur *imglist.Entry) *imglist.Entry) (*imglist.Entry, error) {
	for {
		v.list.Lock()
		cur := v.current
		target := pick(cur)
		v.list.Unlock()
		if target == nil {
			return nil, ErrExhausted
		}
		if target == cur {
			return cur, nil
		}
		e, err := v.Show(target)
		if err == nil {
			return e, nil
		}
		v.logger(fmt.Sprintf("skipping %s: %v", target.Source, err))
	}
}

// Next shows the following entry, wrapping per the loop flag.
func (v *Viewer) Next() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		if cur == nil {
			return v.list.First()
		}
		return v.list.Next(cur, v.cfg.Loop)
	})
}

// Prev shows the preceding entry, wrapping per the loop flag.
func (v *Viewer) Prev() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		if cur == nil {
			return v.list.Last()
		}
		return v.list.Prev(cur, v.cfg.Loop)
	})
}

// NextDir shows the nearest following entry in a different directory.
func (v *Viewer) NextDir() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		if cur == nil {
			return v.list.First()
		}
		return v.list.NextDir(cur, v.cfg.Loop)
	})
}

// PrevDir shows the nearest preceding entry in a different directory.
func (v *Viewer) PrevDir() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		if cur == nil {
			return v.list.Last()
		}
		return v.list.PrevDir(cur, v.cfg.Loop)
	})
}

// Rand shows a uniformly selected different entry.
func (v *Viewer) Rand() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		return v.list.Rand(cur)
	})
}

// Jump shows the entry distance steps away without wrapping.
func (v *Viewer) Jump(distance int) (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		if cur != nil {
			return v.list.Jump(cur, distance)
		}
		// nothing displayed yet: count the first entry as step one
		if distance > 0 {
			return v.list.Jump(v.list.First(), distance-1)
		}
		return v.list.Jump(v.list.First(), distance)
	})
}

// Goto shows the entry with the given 1-based ordinal.
func (v *Viewer) Goto(ordinal int) (*imglist.Entry, error) {
	if n := v.Len(); ordinal < 1 || ordinal > n {
		return nil, fmt.Errorf("ordinal %d out of range 1..%d", ordinal, n)
	}
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		return v.list.Jump(v.list.First(), ordinal-1)
	})
}

// First shows the first listed entry.
func (v *Viewer) First() (*imglist.Entry, error) {
	return v.navigate(func(cur *imglist.Entry) *imglist.Entry {
		return v.list.First()
	})
}

// dropEntry removes an unloadable entry from the list and both caches.
// Caller holds the list lock.
func (v *Viewer) dropEntry(e *imglist.Entry) {
	v.preload.Out(e)
	v.history.Out(e)
	v.list.Remove(e)
	v.removed.Add(1)
}

// Stats returns a snapshot of the pipeline counters.
func (v *Viewer) Stats() Stats {
	v.list.Lock()
	listLen := v.list.Len()
	preloadLen := v.preload.Len()
	historyLen := v.history.Len()
	v.list.Unlock()
	return Stats{
		Decodes:     v.decodes.Load(),
		PreloadHits: v.preloadHits.Load(),
		HistoryHits: v.historyHits.Load(),
		Removed:     v.removed.Load(),
		ListLen:     listLen,
		PreloadLen:  preloadLen,
		HistoryLen:  historyLen,
		Workers:     v.pool.ThreadCount(),
	}
}

// WaitIdle blocks until the thread pool has nothing queued and nothing
// running. Unlike Quiesce it lets queued preload work finish first.
func (v *Viewer) WaitIdle() {
	v.pool.Wait()
}

// Quiesce abandons pending preload work and waits for in-flight tasks to
// finish. Call it before mutating viewer state a task might touch, for
// example when tearing a mode down.
func (v *Viewer) Quiesce() {
	v.pool.Cancel()
	v.pool.Wait()
}

// Close quiesces and shuts the thread pool down. The viewer must not be used
// afterwards.
func (v *Viewer) Close() {
	v.Quiesce()
	v.pool.Close()
}
