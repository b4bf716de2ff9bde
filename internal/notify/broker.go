// Package notify fans screen change notifications out to subscribed
// displays. Publishes go through Redis pub/sub so every server instance
// sees them; local subscribers receive events on buffered channels behind
// the SSE endpoint. An optional MQTT publish mirrors each event for TV
// firmwares that consume a broker directly.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/model"
)

const (
	EventPlaylistUpdated = "playlist_updated"
	EventScreenDeleted   = "screen_deleted"

	clientBufferSize = 16
)

// Event is the post-change image delivered to displays. PlaylistUpdated
// events carry the full new playlist so subscribers replace wholesale
// instead of re-fetching.
type Event struct {
	Type     string              `json:"type"`
	ScreenID int                 `json:"screen_id"`
	Playlist model.PlaylistItems `json:"playlist,omitempty"`
}

// Client is one subscribed display connection.
type Client struct {
	ScreenID int
	Events   chan Event
	Done     chan struct{}
}

type Broker struct {
	redis  *redis.Client
	mqtt   Publisher
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc

	// screenID -> set of local subscribers
	clients map[int]map[*Client]bool
	// screenID -> cancel for that screen's Redis reader goroutine
	readers map[int]context.CancelFunc
}

// Publisher is the optional push mirror (see the mqtt fanout).
type Publisher interface {
	Publish(topic string, payload []byte) error
}

func NewBroker(redisClient *redis.Client, mqttPub Publisher) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:   redisClient,
		mqtt:    mqttPub,
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[int]map[*Client]bool),
		readers: make(map[int]context.CancelFunc),
	}
}

// ScreenChannel names the Redis pub/sub channel scoped to one screen.
func ScreenChannel(screenID int) string {
	return fmt.Sprintf("screens:%d:events", screenID)
}

// Subscribe registers a local client for one screen's events. The first
// subscriber for a screen starts the Redis pub/sub reader; the last
// Unsubscribe stops it again.
func (b *Broker) Subscribe(screenID int) *Client {
	client := &Client{
		ScreenID: screenID,
		Events:   make(chan Event, clientBufferSize),
		Done:     make(chan struct{}),
	}

	b.mu.Lock()
	if b.clients[screenID] == nil {
		b.clients[screenID] = make(map[*Client]bool)
		readerCtx, cancel := context.WithCancel(b.ctx)
		b.readers[screenID] = cancel
		go b.readRedis(readerCtx, screenID)
	}
	b.clients[screenID][client] = true
	count := len(b.clients[screenID])
	b.mu.Unlock()

	log.Info().Int("screen_id", screenID).Int("client_count", count).
		Msg("display subscribed")
	return client
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients, ok := b.clients[client.ScreenID]
	if !ok {
		return
	}
	delete(clients, client)
	close(client.Done)
	if len(clients) == 0 {
		delete(b.clients, client.ScreenID)
		if cancel := b.readers[client.ScreenID]; cancel != nil {
			cancel()
			delete(b.readers, client.ScreenID)
		}
	}
	log.Info().Int("screen_id", client.ScreenID).Int("client_count", len(clients)).
		Msg("display unsubscribed")
}

// PublishPlaylist announces a wholesale playlist replacement for a screen.
func (b *Broker) PublishPlaylist(ctx context.Context, screenID int, items []model.PlaylistItem) error {
	return b.publish(ctx, Event{
		Type:     EventPlaylistUpdated,
		ScreenID: screenID,
		Playlist: items,
	})
}

// PublishScreenDeleted tells any bound display that its screen is gone so
// it can clear its local binding.
func (b *Broker) PublishScreenDeleted(ctx context.Context, screenID int) error {
	return b.publish(ctx, Event{Type: EventScreenDeleted, ScreenID: screenID})
}

func (b *Broker) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if b.mqtt != nil {
		topic := fmt.Sprintf("screens/%d/playlist", event.ScreenID)
		if err := b.mqtt.Publish(topic, data); err != nil {
			log.Warn().Err(err).Int("screen_id", event.ScreenID).
				Msg("mqtt mirror publish failed")
		}
	}

	return b.redis.Publish(ctx, ScreenChannel(event.ScreenID), data).Err()
}

func (b *Broker) readRedis(ctx context.Context, screenID int) {
	channel := ScreenChannel(screenID)
	pubsub := b.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Debug().Int("screen_id", screenID).Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("screen_id", screenID).Msg("redis pubsub reader stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal screen event")
				continue
			}
			b.broadcast(screenID, event)
		}
	}
}

func (b *Broker) broadcast(screenID int, event Event) {
	b.mu.RLock()
	clients := b.clients[screenID]
	b.mu.RUnlock()

	for client := range clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().Int("screen_id", screenID).
				Msg("display event buffer full, dropping event")
		}
	}
}

// ClientCount reports local subscribers for one screen.
func (b *Broker) ClientCount(screenID int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[screenID])
}

// TotalClients reports all local subscribers.
func (b *Broker) TotalClients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0
	for _, clients := range b.clients {
		total += len(clients)
	}
	return total
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, clients := range b.clients {
		for client := range clients {
			close(client.Done)
		}
	}
	b.clients = make(map[int]map[*Client]bool)
	// readers inherit the broker context, so b.cancel() already stopped them
	b.readers = make(map[int]context.CancelFunc)
}
