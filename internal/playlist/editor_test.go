package playlist

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signageflow/signageflow/internal/model"
)

type fakeCommitter struct {
	screenID int
	items    []model.PlaylistItem
	calls    int
	err      error
}

func (f *fakeCommitter) ReplacePlaylist(ctx context.Context, screenID int, items []model.PlaylistItem) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.screenID = screenID
	f.items = items
	return nil
}

func item(name string) model.PlaylistItem {
	return model.PlaylistItem{MediaID: 1, Name: name, MimeType: "image/png", Duration: 5}
}

func TestEditorAppend(t *testing.T) {
	t.Run("appends to the end", func(t *testing.T) {
		e := NewEditor(1, []model.PlaylistItem{item("a")}, nil)
		e.Append(item("b"))

		items := e.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "b", items[1].Name)
	})

	t.Run("defaults duration for non-video items", func(t *testing.T) {
		e := NewEditor(1, nil, nil)
		e.Append(model.PlaylistItem{Name: "img", MimeType: "image/jpeg"})

		assert.Equal(t, model.DefaultItemDurationSeconds, e.Items()[0].Duration)
	})

	t.Run("leaves video duration at zero", func(t *testing.T) {
		e := NewEditor(1, nil, nil)
		e.Append(model.PlaylistItem{Name: "clip", MimeType: "video/mp4"})

		assert.Equal(t, 0, e.Items()[0].Duration)
	})

	t.Run("keeps an explicit duration", func(t *testing.T) {
		e := NewEditor(1, nil, nil)
		e.Append(model.PlaylistItem{Name: "img", MimeType: "image/png", Duration: 30})

		assert.Equal(t, 30, e.Items()[0].Duration)
	})
}

func TestEditorRemoveAt(t *testing.T) {
	t.Run("removes the indexed item", func(t *testing.T) {
		e := NewEditor(1, []model.PlaylistItem{item("a"), item("b"), item("c")}, nil)
		e.RemoveAt(1)

		items := e.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Name)
		assert.Equal(t, "c", items[1].Name)
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		e := NewEditor(1, []model.PlaylistItem{item("a")}, nil)
		e.RemoveAt(-1)
		e.RemoveAt(1)
		e.RemoveAt(42)

		assert.Equal(t, 1, e.Len())
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		e := NewEditor(1, nil, nil)
		e.RemoveAt(0)

		assert.Equal(t, 0, e.Len())
	})
}

func TestEditorShuffle(t *testing.T) {
	t.Run("preserves the multiset of items", func(t *testing.T) {
		names := []string{"a", "b", "c", "d", "e", "f"}
		items := make([]model.PlaylistItem, len(names))
		for i, n := range names {
			items[i] = item(n)
		}
		e := NewEditor(1, items, nil)
		e.Shuffle()

		got := make([]string, 0, len(names))
		for _, it := range e.Items() {
			got = append(got, it.Name)
		}
		sort.Strings(got)
		assert.Equal(t, names, got)
	})

	t.Run("single item stays put", func(t *testing.T) {
		e := NewEditor(1, []model.PlaylistItem{item("only")}, nil)
		e.Shuffle()

		require.Equal(t, 1, e.Len())
		assert.Equal(t, "only", e.Items()[0].Name)
	})

	t.Run("empty list stays empty", func(t *testing.T) {
		e := NewEditor(1, nil, nil)
		e.Shuffle()

		assert.Equal(t, 0, e.Len())
	})

	t.Run("eventually produces a different order", func(t *testing.T) {
		items := []model.PlaylistItem{item("a"), item("b"), item("c"), item("d"), item("e")}
		moved := false
		for i := 0; i < 50 && !moved; i++ {
			e := NewEditor(1, items, nil)
			e.Shuffle()
			for j, it := range e.Items() {
				if it.Name != items[j].Name {
					moved = true
					break
				}
			}
		}
		assert.True(t, moved, "50 shuffles of 5 items should not all be identity")
	})
}

func TestEditorCommit(t *testing.T) {
	t.Run("persists the working copy wholesale", func(t *testing.T) {
		store := &fakeCommitter{}
		e := NewEditor(7, []model.PlaylistItem{item("a")}, store)
		e.Append(item("b"))
		e.RemoveAt(0)

		require.NoError(t, e.Commit(context.Background()))
		assert.Equal(t, 7, store.screenID)
		require.Len(t, store.items, 1)
		assert.Equal(t, "b", store.items[0].Name)
	})

	t.Run("failure keeps the working copy", func(t *testing.T) {
		store := &fakeCommitter{err: errors.New("connection reset")}
		e := NewEditor(7, nil, store)
		e.Append(item("a"))

		require.Error(t, e.Commit(context.Background()))
		assert.Equal(t, 1, e.Len())

		store.err = nil
		require.NoError(t, e.Commit(context.Background()))
		assert.Equal(t, 2, store.calls)
	})
}

func TestEditorCopiesInput(t *testing.T) {
	current := []model.PlaylistItem{item("a")}
	e := NewEditor(1, current, nil)
	current[0].Name = "mutated"

	assert.Equal(t, "a", e.Items()[0].Name)
}
