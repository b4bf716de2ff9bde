package display

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/http/api/tv/packets"
	"github.com/signageflow/signageflow/internal/notify"
	"github.com/signageflow/signageflow/internal/playback"
)

const (
	reconnectBaseDelay = 2 * time.Second
	reconnectMaxDelay  = 60 * time.Second
)

// ErrUnbound is returned when the bound screen no longer resolves; the
// caller should fall back to the pairing prompt.
var ErrUnbound = errors.New("binding invalid, screen not found")

// Client runs the display side: pair once, then fetch-and-subscribe until
// the context ends or the binding turns invalid.
type Client struct {
	baseURL  string
	http     *http.Client
	bindings *BindingStore
	engine   *playback.Engine
}

func NewClient(baseURL string, bindings *BindingStore, engine *playback.Engine) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     &http.Client{},
		bindings: bindings,
		engine:   engine,
	}
}

// Pair redeems a pairing code and persists the resulting binding.
func (c *Client) Pair(ctx context.Context, code string) (Binding, error) {
	body, _ := json.Marshal(map[string]string{"code": code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tv/pair", bytes.NewReader(body))
	if err != nil {
		return Binding{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Binding{}, fmt.Errorf("pairing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Binding{}, fmt.Errorf("pairing rejected: status %d", resp.StatusCode)
	}

	var pr packets.PairResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Binding{}, fmt.Errorf("decode pairing response: %w", err)
	}

	binding := Binding{ScreenID: pr.ScreenID, DeviceID: pr.DeviceID}
	if err := c.bindings.Save(binding); err != nil {
		return Binding{}, err
	}
	log.Info().Int("screen_id", binding.ScreenID).Msg("paired and bound")
	return binding, nil
}

// Run drives playback for the bound screen. Each (re)connect re-fetches
// the current playlist before consuming events, so edits made while the
// display was offline are never missed. Returns ErrUnbound after the
// binding has been cleared.
func (c *Client) Run(ctx context.Context) error {
	binding, ok := c.bindings.Load()
	if !ok {
		return ErrUnbound
	}

	delay := reconnectBaseDelay
	for {
		screen, err := c.fetchScreen(ctx, binding.ScreenID)
		switch {
		case err == nil:
			delay = reconnectBaseDelay
			c.engine.SetPlaylist(screen.Playlist)

			err = c.consumeEvents(ctx, binding.ScreenID)
			if errors.Is(err, ErrUnbound) {
				c.unbind()
				return ErrUnbound
			}
		case errors.Is(err, ErrUnbound):
			c.unbind()
			return ErrUnbound
		default:
			log.Warn().Err(err).Int("screen_id", binding.ScreenID).
				Msg("failed to fetch screen, will retry")
		}

		select {
		case <-ctx.Done():
			c.engine.Stop()
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func (c *Client) unbind() {
	c.bindings.Clear()
	c.engine.Stop()
}

func (c *Client) fetchScreen(ctx context.Context, screenID int) (packets.ScreenResponse, error) {
	url := fmt.Sprintf("%s/api/tv/screens/%d", c.baseURL, screenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return packets.ScreenResponse{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return packets.ScreenResponse{}, fmt.Errorf("fetch screen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return packets.ScreenResponse{}, ErrUnbound
	}
	if resp.StatusCode != http.StatusOK {
		return packets.ScreenResponse{}, fmt.Errorf("fetch screen: status %d", resp.StatusCode)
	}

	var sr packets.ScreenResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return packets.ScreenResponse{}, fmt.Errorf("decode screen: %w", err)
	}
	return sr, nil
}

// consumeEvents blocks on the SSE stream until it drops. A screen-deleted
// event surfaces as ErrUnbound.
func (c *Client) consumeEvents(ctx context.Context, screenID int) error {
	url := fmt.Sprintf("%s/api/tv/screens/%d/events", c.baseURL, screenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUnbound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscribe: status %d", resp.StatusCode)
	}

	log.Info().Int("screen_id", screenID).Msg("subscribed to screen events")

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event notify.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// heartbeats carry a bare timestamp, not JSON
			continue
		}

		switch event.Type {
		case notify.EventPlaylistUpdated:
			log.Info().Int("screen_id", screenID).Int("items", len(event.Playlist)).
				Msg("playlist updated, replacing")
			c.engine.SetPlaylist(event.Playlist)
		case notify.EventScreenDeleted:
			return ErrUnbound
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("event stream: %w", err)
	}
	return errors.New("event stream closed")
}
