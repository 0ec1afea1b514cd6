package viewer

import (
	"context"
	"fmt"
	"runtime"

	"glance/internal/imglist"
	"glance/internal/loader"
)

// preloadYieldEvery bounds how many unreadable entries one pass may
// scan-and-discard before yielding the list lock, so a run of invalid files
// cannot starve interactive navigation.
const preloadYieldEvery = 8

// schedulePreload abandons any queued preload request and submits a fresh
// one. Called after every change of the displayed image. The generation
// bump makes an already-running pass exit at its next lock acquisition, so
// at most one pass ever mutates the caches per generation.
func (v *Viewer) schedulePreload() {
	if v.preload.Cap() == 0 {
		return
	}
	gen := v.preloadGen.Add(1)
	v.pool.Cancel()
	v.pool.AddTask(v.preloadTask, nil, gen)
}

// preloadTask walks the list ahead of the current entry and fills the
// preload cache. It holds the list lock only between decodes; each decode
// runs unlocked against a cloned source, and after every relock the pass
// re-verifies its generation, the displayed entry, and the candidate's
// identity before touching any cache. A pass whose generation is stale
// returns; a pass whose displayed entry moved restarts from the new
// position. The displayed entry itself is never cached.
func (v *Viewer) preloadTask(data any) {
	gen, _ := data.(int64)
	v.list.Lock()
	defer v.list.Unlock()
	discards := 0

restart:
	for {
		if v.preloadGen.Load() != gen {
			return // a newer pass supersedes this one
		}
		start := v.current
		if start == nil {
			return
		}
		pos := start
		for v.preload.Len() < v.preload.Cap() {
			if v.preloadGen.Load() != gen {
				return
			}
			if v.current != start {
				continue restart // displayed image moved; walk from it instead
			}
			cand := v.list.Next(pos, v.cfg.Loop)
			if cand == nil || cand == start {
				return // list end, or wrapped all the way around
			}
			if cand.Payload != nil {
				// already decoded: refresh its cache position, no decode
				if !v.preload.Out(cand) {
					v.history.Out(cand)
				}
				v.preload.Put(cand)
				pos = cand
				continue
			}

			src := cand.Source
			v.list.Unlock()
			img, status, err := v.reg.FromSource(context.Background(), string(src))
			v.list.Lock()

			// the world may have changed while we decoded
			if v.preloadGen.Load() != gen {
				return
			}
			if v.current != start {
				continue restart
			}
			if v.list.Find(src) != cand {
				continue
			}
			if cand.Payload != nil {
				// a synchronous load beat us to it; keep theirs
				v.preload.Put(cand)
				pos = cand
				continue
			}
			if status != loader.Success {
				v.logger(fmt.Sprintf("preload: dropping %s (%s): %v", src, status, err))
				v.dropEntry(cand)
				discards++
				if discards%preloadYieldEvery == 0 {
					v.list.Unlock()
					runtime.Gosched()
					v.list.Lock()
				}
				continue
			}
			v.decodes.Add(1)
			cand.Payload = img
			v.preload.Put(cand)
			pos = cand
		}
		return
	}
}

// Preloaded reports whether e currently sits in the preload cache with its
// payload attached. Test and diagnostic helper.
func (v *Viewer) Preloaded(e *imglist.Entry) bool {
	v.list.Lock()
	defer v.list.Unlock()
	return v.preload.Contains(e) && e.Payload != nil
}
