package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"orl-assistant/internal/pkg/logger"
	"orl-assistant/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubForwardsFeed(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	client := &Client{ID: "c1", Hub: hub, Send: make(chan []byte, 4)}
	require.True(t, hub.add(client))
	assert.Equal(t, 1, hub.ClientCount())

	ctx, cancel := context.WithCancel(context.Background())
	feed := make(chan events.Event, 1)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx, feed)
		close(done)
	}()

	feed <- events.New(events.TypeUnauthorized, nil)

	select {
	case msg := <-client.Send:
		var got events.BaseEvent
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, events.TypeUnauthorized, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	<-done

	_, open := <-client.Send
	assert.False(t, open, "clients are disconnected when the hub stops")
	assert.False(t, hub.add(&Client{ID: "late", Hub: hub, Send: make(chan []byte, 1)}))
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	slow := &Client{ID: "slow", Hub: hub, Send: make(chan []byte)}
	fast := &Client{ID: "fast", Hub: hub, Send: make(chan []byte, 1)}
	hub.add(slow)
	hub.add(fast)

	hub.Broadcast(events.New(events.TypeTokenSet, nil))

	assert.Equal(t, 1, hub.ClientCount())
	assert.Len(t, fast.Send, 1)
	_, open := <-slow.Send
	assert.False(t, open)
}
