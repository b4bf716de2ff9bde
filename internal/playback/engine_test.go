package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signageflow/signageflow/internal/model"
)

// fakeTimer records scheduled callbacks so tests fire them by hand.
type fakeTimer struct {
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

type scheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

type scheduledCall struct {
	d     time.Duration
	f     func()
	timer *fakeTimer
}

func (s *scheduler) schedule(d time.Duration, f func()) timerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{}
	s.calls = append(s.calls, scheduledCall{d: d, f: f, timer: t})
	return t
}

func (s *scheduler) last() scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *scheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type renderLog struct {
	mu      sync.Mutex
	entries []renderEntry
}

type renderEntry struct {
	item  *model.PlaylistItem
	index int
}

func (r *renderLog) record(item *model.PlaylistItem, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, renderEntry{item: item, index: index})
}

func (r *renderLog) last() renderEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

func newTestEngine() (*Engine, *scheduler, *renderLog) {
	sched := &scheduler{}
	rlog := &renderLog{}
	e := NewEngine(rlog.record)
	e.schedule = sched.schedule
	return e, sched, rlog
}

func image(name string, duration int) model.PlaylistItem {
	return model.PlaylistItem{MediaID: 1, Name: name, MimeType: "image/png", Duration: duration}
}

func video(name string) model.PlaylistItem {
	return model.PlaylistItem{MediaID: 2, Name: name, MimeType: "video/mp4"}
}

func TestEngineSetPlaylist(t *testing.T) {
	t.Run("starts at index zero", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5)})

		item, index, ok := e.Current()
		require.True(t, ok)
		assert.Equal(t, 0, index)
		assert.Equal(t, "a", item.Name)
	})

	t.Run("replacement resets to index zero", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5), image("c", 5)})
		e.Advance()
		e.Advance()

		_, index, _ := e.Current()
		require.Equal(t, 2, index)

		e.SetPlaylist([]model.PlaylistItem{image("x", 5), image("y", 5)})
		item, index, ok := e.Current()
		require.True(t, ok)
		assert.Equal(t, 0, index)
		assert.Equal(t, "x", item.Name)
	})

	t.Run("empty playlist goes idle", func(t *testing.T) {
		e, sched, rlog := newTestEngine()
		e.SetPlaylist(nil)

		_, _, ok := e.Current()
		assert.False(t, ok)
		assert.Equal(t, 0, sched.count(), "idle engine should schedule nothing")
		assert.Nil(t, rlog.last().item)
	})

	t.Run("does not alias caller slice", func(t *testing.T) {
		e, _, _ := newTestEngine()
		items := []model.PlaylistItem{image("a", 5)}
		e.SetPlaylist(items)
		items[0].Name = "mutated"

		item, _, _ := e.Current()
		assert.Equal(t, "a", item.Name)
	})
}

func TestEngineAdvance(t *testing.T) {
	t.Run("wraps modulo playlist length", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5)})

		e.Advance()
		_, index, _ := e.Current()
		assert.Equal(t, 1, index)

		e.Advance()
		_, index, _ = e.Current()
		assert.Equal(t, 0, index)
	})

	t.Run("single item wraps onto itself", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("only", 5)})

		e.Advance()
		item, index, ok := e.Current()
		require.True(t, ok)
		assert.Equal(t, 0, index)
		assert.Equal(t, "only", item.Name)
	})

	t.Run("empty playlist is a no-op", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist(nil)
		e.Advance()

		_, _, ok := e.Current()
		assert.False(t, ok)
	})
}

func TestEngineTimers(t *testing.T) {
	t.Run("image schedules its effective duration", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 7)})

		require.Equal(t, 1, sched.count())
		assert.Equal(t, 7*time.Second, sched.last().d)
	})

	t.Run("image without duration gets the default", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 0)})

		assert.Equal(t, time.Duration(model.DefaultItemDurationSeconds)*time.Second, sched.last().d)
	})

	t.Run("timer fire advances to the next item", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5)})

		sched.last().f()
		item, index, _ := e.Current()
		assert.Equal(t, 1, index)
		assert.Equal(t, "b", item.Name)
	})

	t.Run("stale timer is ignored after replacement", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5)})
		stale := sched.last()

		e.SetPlaylist([]model.PlaylistItem{image("x", 5), image("y", 5)})
		stale.f()

		item, index, _ := e.Current()
		assert.Equal(t, 0, index, "timer from the old playlist must not advance the new one")
		assert.Equal(t, "x", item.Name)
	})

	t.Run("stale timer is ignored after manual advance", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5), image("c", 5)})
		stale := sched.last()

		e.Advance()
		stale.f()

		_, index, _ := e.Current()
		assert.Equal(t, 1, index, "already-fired advance must not double-step")
	})

	t.Run("video schedules no timer", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{video("v")})

		assert.Equal(t, 0, sched.count())
	})
}

func TestEngineVideoEnded(t *testing.T) {
	t.Run("advances past a video", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{video("v"), image("a", 5)})

		e.VideoEnded()
		item, index, _ := e.Current()
		assert.Equal(t, 1, index)
		assert.Equal(t, "a", item.Name)
	})

	t.Run("ignored when current item is not a video", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), video("v")})

		e.VideoEnded()
		_, index, _ := e.Current()
		assert.Equal(t, 0, index)
	})

	t.Run("ignored when idle", func(t *testing.T) {
		e, _, _ := newTestEngine()
		e.SetPlaylist(nil)
		e.VideoEnded()

		_, _, ok := e.Current()
		assert.False(t, ok)
	})

	t.Run("image then video then wrap", func(t *testing.T) {
		e, sched, _ := newTestEngine()
		e.SetPlaylist([]model.PlaylistItem{image("a", 5), video("v")})

		sched.last().f()
		_, index, _ := e.Current()
		require.Equal(t, 1, index)

		e.VideoEnded()
		item, index, _ := e.Current()
		assert.Equal(t, 0, index)
		assert.Equal(t, "a", item.Name)
	})
}

func TestEngineStop(t *testing.T) {
	e, sched, rlog := newTestEngine()
	e.SetPlaylist([]model.PlaylistItem{image("a", 5)})
	pending := sched.last().timer

	e.Stop()
	_, _, ok := e.Current()
	assert.False(t, ok)
	assert.True(t, pending.stopped, "pending timer must be cancelled")
	assert.Nil(t, rlog.last().item)
}

func TestEngineGeneration(t *testing.T) {
	e, _, _ := newTestEngine()
	g0 := e.Generation()

	e.SetPlaylist([]model.PlaylistItem{image("a", 5), image("b", 5)})
	g1 := e.Generation()
	assert.Greater(t, g1, g0)

	e.Advance()
	assert.Greater(t, e.Generation(), g1)
}
