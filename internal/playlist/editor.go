// Package playlist implements the owner-side editing operations over a
// local working copy of a screen's playlist.
package playlist

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/signageflow/signageflow/internal/model"
)

// Committer persists the whole working playlist as one atomic replace.
type Committer interface {
	ReplacePlaylist(ctx context.Context, screenID int, items []model.PlaylistItem) error
}

// Editor holds a working copy of a screen's playlist. Mutations stay
// in memory until Commit.
type Editor struct {
	screenID int
	items    []model.PlaylistItem
	store    Committer
}

func NewEditor(screenID int, current []model.PlaylistItem, store Committer) *Editor {
	items := make([]model.PlaylistItem, len(current))
	copy(items, current)
	return &Editor{screenID: screenID, items: items, store: store}
}

// Append resolves the item's effective duration and adds it to the end.
// Video items keep a zero duration; their advance is driven by the player's
// end-of-playback signal.
func (e *Editor) Append(item model.PlaylistItem) {
	if item.Duration <= 0 && !item.IsVideo() {
		item.Duration = model.DefaultItemDurationSeconds
	}
	e.items = append(e.items, item)
}

// RemoveAt removes the item at index i; out-of-range indices are a no-op.
func (e *Editor) RemoveAt(i int) {
	if i < 0 || i >= len(e.items) {
		return
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
}

// Shuffle produces a uniformly random permutation (Fisher-Yates). Lists of
// length 0 or 1 are untouched.
func (e *Editor) Shuffle() {
	for i := len(e.items) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return
		}
		j := int(n.Int64())
		e.items[i], e.items[j] = e.items[j], e.items[i]
	}
}

// Items returns a copy of the working playlist.
func (e *Editor) Items() []model.PlaylistItem {
	out := make([]model.PlaylistItem, len(e.items))
	copy(out, e.items)
	return out
}

func (e *Editor) Len() int {
	return len(e.items)
}

// Commit persists the entire working playlist as one atomic replace of the
// screen's playlist attribute. Concurrent editors are not merged; the last
// commit overwrites the other. On failure the persisted state is untouched
// and the working copy remains for a manual retry.
func (e *Editor) Commit(ctx context.Context) error {
	return e.store.ReplacePlaylist(ctx, e.screenID, e.Items())
}
