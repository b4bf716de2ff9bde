// Package playback implements the display-side playlist state machine:
// timer-driven advance for images, end-signal advance for videos, and
// wholesale playlist replacement on change notifications.
package playback

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/model"
)

// timerHandle abstracts the pending-advance timer so tests can fire it
// deterministically.
type timerHandle interface {
	Stop() bool
}

type realTimer struct{ *time.Timer }

func (t realTimer) Stop() bool { return t.Timer.Stop() }

// Engine cycles through a playlist. All entry points are safe for
// concurrent use; timer callbacks and notification deliveries arrive on
// separate goroutines.
//
// Every playlist or index mutation bumps a generation counter. An in-flight timer
// callback carries the generation it was scheduled under and no-ops when it
// no longer matches, so a stale timer can never advance superseded state.
type Engine struct {
	mu    sync.Mutex
	items []model.PlaylistItem
	index int
	idle  bool
	gen   uint64
	timer timerHandle

	// schedule is swapped out by tests.
	schedule func(d time.Duration, f func()) timerHandle

	// onRender is invoked (outside the lock) whenever the current item
	// changes; nil item means the idle state.
	onRender func(item *model.PlaylistItem, index int)
}

func NewEngine(onRender func(item *model.PlaylistItem, index int)) *Engine {
	return &Engine{
		idle:     true,
		onRender: onRender,
		schedule: func(d time.Duration, f func()) timerHandle {
			return realTimer{time.AfterFunc(d, f)}
		},
	}
}

// SetPlaylist replaces the playlist wholesale and resets the index to 0
// unconditionally: a full replacement invalidates the old index space.
func (e *Engine) SetPlaylist(items []model.PlaylistItem) {
	e.mu.Lock()
	e.items = make([]model.PlaylistItem, len(items))
	copy(e.items, items)
	e.index = 0
	render := e.enterLocked()
	e.mu.Unlock()
	render()
}

// Advance moves to the next index modulo the playlist length. Calling it
// against an empty playlist is harmless.
func (e *Engine) Advance() {
	e.mu.Lock()
	render := e.advanceLocked()
	e.mu.Unlock()
	render()
}

// VideoEnded is the explicit end-of-playback signal from the rendering
// surface. It advances only when the current item is a video; a late signal
// for an item that has already been replaced is ignored.
func (e *Engine) VideoEnded() {
	e.mu.Lock()
	if e.idle || !e.items[e.index].IsVideo() {
		e.mu.Unlock()
		return
	}
	render := e.advanceLocked()
	e.mu.Unlock()
	render()
}

// Current returns the item being rendered, or ok=false in the idle state.
func (e *Engine) Current() (model.PlaylistItem, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idle {
		return model.PlaylistItem{}, 0, false
	}
	return e.items[e.index], e.index, true
}

// Generation reports the current mutation stamp. It moves forward on every
// playlist replacement or index change.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Stop cancels any pending timer and parks the engine in the idle state.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.items = nil
	e.index = 0
	render := e.enterLocked()
	e.mu.Unlock()
	render()
}

func (e *Engine) advanceLocked() func() {
	if len(e.items) == 0 {
		return e.enterLocked()
	}
	e.index = (e.index + 1) % len(e.items)
	return e.enterLocked()
}

// enterLocked applies the entry rules for the current index and returns the
// render callback to run after the lock is released.
func (e *Engine) enterLocked() func() {
	e.gen++
	e.cancelTimerLocked()

	if len(e.items) == 0 {
		e.idle = true
		cb := e.onRender
		if cb == nil {
			return func() {}
		}
		return func() { cb(nil, 0) }
	}

	e.idle = false
	item := e.items[e.index]
	index := e.index

	if !item.IsVideo() {
		gen := e.gen
		d := item.EffectiveDuration()
		e.timer = e.schedule(d, func() {
			e.advanceIfCurrent(gen)
		})
		log.Debug().Int("index", index).Dur("duration", d).Msg("scheduled playback advance")
	}

	cb := e.onRender
	if cb == nil {
		return func() {}
	}
	return func() { cb(&item, index) }
}

// advanceIfCurrent is the timer callback. The captured generation guards
// against firing after the playlist changed out from under the timer.
func (e *Engine) advanceIfCurrent(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	render := e.advanceLocked()
	e.mu.Unlock()
	render()
}

func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
