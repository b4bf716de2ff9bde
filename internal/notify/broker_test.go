package notify

import (
	"encoding/json"
	"runtime"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signageflow/signageflow/internal/model"
)

// testBroker uses a client pointed at an unroutable address; the pub/sub
// reader goroutine just retries in the background, so the local
// registry and fanout paths are exercised without a live Redis.
func testBroker() *Broker {
	return NewBroker(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), nil)
}

func TestScreenChannel(t *testing.T) {
	assert.Equal(t, "screens:42:events", ScreenChannel(42))
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := testBroker()
	defer b.Close()

	c1 := b.Subscribe(1)
	c2 := b.Subscribe(1)
	c3 := b.Subscribe(2)

	assert.Equal(t, 2, b.ClientCount(1))
	assert.Equal(t, 1, b.ClientCount(2))
	assert.Equal(t, 3, b.TotalClients())

	b.Unsubscribe(c1)
	assert.Equal(t, 1, b.ClientCount(1))

	select {
	case <-c1.Done:
	default:
		t.Fatal("Done must be closed on unsubscribe")
	}

	b.Unsubscribe(c2)
	b.Unsubscribe(c3)
	assert.Equal(t, 0, b.TotalClients())
}

func readerCount(b *Broker) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.readers)
}

func TestReaderLifecycle(t *testing.T) {
	t.Run("last unsubscribe stops the screen's reader", func(t *testing.T) {
		b := testBroker()
		defer b.Close()

		c1 := b.Subscribe(1)
		c2 := b.Subscribe(1)
		assert.Equal(t, 1, readerCount(b), "one reader per screen, not per subscriber")

		b.Unsubscribe(c1)
		assert.Equal(t, 1, readerCount(b), "reader stays while a subscriber remains")

		b.Unsubscribe(c2)
		assert.Equal(t, 0, readerCount(b))
	})

	t.Run("resubscribing starts exactly one fresh reader", func(t *testing.T) {
		b := testBroker()
		defer b.Close()

		b.Unsubscribe(b.Subscribe(1))
		b.Subscribe(1)
		assert.Equal(t, 1, readerCount(b))
	})

	t.Run("subscriber churn does not strand goroutines", func(t *testing.T) {
		b := testBroker()
		defer b.Close()

		before := runtime.NumGoroutine()
		for i := 0; i < 20; i++ {
			b.Unsubscribe(b.Subscribe(1))
		}
		assert.Equal(t, 0, readerCount(b))

		// stopped readers wind down asynchronously
		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= before+5
		}, 5*time.Second, 50*time.Millisecond)
	})
}

func TestUnsubscribeUnknownClient(t *testing.T) {
	b := testBroker()
	defer b.Close()

	b.Unsubscribe(&Client{ScreenID: 99, Events: make(chan Event), Done: make(chan struct{})})
	assert.Equal(t, 0, b.TotalClients())
}

func TestBroadcast(t *testing.T) {
	t.Run("delivers to every subscriber of the screen", func(t *testing.T) {
		b := testBroker()
		defer b.Close()

		c1 := b.Subscribe(1)
		c2 := b.Subscribe(1)
		other := b.Subscribe(2)

		event := Event{Type: EventPlaylistUpdated, ScreenID: 1,
			Playlist: model.PlaylistItems{{MediaID: 1, Name: "a"}}}
		b.broadcast(1, event)

		for _, c := range []*Client{c1, c2} {
			select {
			case got := <-c.Events:
				assert.Equal(t, event, got)
			default:
				t.Fatal("subscriber did not receive the event")
			}
		}
		select {
		case <-other.Events:
			t.Fatal("subscriber of another screen must not receive the event")
		default:
		}
	})

	t.Run("drops instead of blocking on a full buffer", func(t *testing.T) {
		b := testBroker()
		defer b.Close()

		c := b.Subscribe(1)
		for i := 0; i < clientBufferSize+5; i++ {
			b.broadcast(1, Event{Type: EventPlaylistUpdated, ScreenID: 1})
		}
		assert.Len(t, c.Events, clientBufferSize)
	})
}

func TestClose(t *testing.T) {
	b := testBroker()
	c := b.Subscribe(1)

	b.Close()
	select {
	case <-c.Done:
	default:
		t.Fatal("Done must be closed when the broker shuts down")
	}
	assert.Equal(t, 0, b.TotalClients())
}

func TestEventEncoding(t *testing.T) {
	t.Run("playlist update carries the new playlist", func(t *testing.T) {
		event := Event{Type: EventPlaylistUpdated, ScreenID: 7,
			Playlist: model.PlaylistItems{{MediaID: 1, Name: "a", URL: "/a.png", MimeType: "image/png", Duration: 5}}}
		data, err := json.Marshal(event)
		require.NoError(t, err)

		var back Event
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, event, back)
	})

	t.Run("deletion omits the playlist field", func(t *testing.T) {
		data, err := json.Marshal(Event{Type: EventScreenDeleted, ScreenID: 7})
		require.NoError(t, err)
		assert.NotContains(t, string(data), "playlist")
	})
}
