package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Subscribe(w, r, r.URL.Query().Get("topic"), 1)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?topic=" + topic
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "session-a")
	other := dial(t, srv, "session-b")

	require.Eventually(t, func() bool {
		return hub.ClientCount("session-a") == 1 && hub.ClientCount("session-b") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish("session-a", "marked", map[string]interface{}{"studentId": 4})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "marked", event.Type)
	assert.Equal(t, "session-a", event.Topic)

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_CloseTopicDisconnects(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "session-a")

	require.Eventually(t, func() bool { return hub.ClientCount("session-a") == 1 }, time.Second, 10*time.Millisecond)

	hub.CloseTopic("session-a")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.Eventually(t, func() bool { return hub.ClientCount("session-a") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("x", "face", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after hub stopped")
	}
}

func TestHub_CloseTopicDeliversQueuedEventsFirst(t *testing.T) {
	hub, srv := startHub(t)

	for run := 0; run < 10; run++ {
		topic := "session-" + string(rune('a'+run))
		conn := dial(t, srv, topic)
		require.Eventually(t, func() bool { return hub.ClientCount(topic) == 1 }, time.Second, 10*time.Millisecond)

		for i := 0; i < 30; i++ {
			hub.Publish(topic, "scan.frame", map[string]int{"n": i})
		}
		hub.Publish(topic, "scan.closed", nil)
		hub.CloseTopic(topic)

		var types []string
		for {
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, data, err := conn.ReadMessage()
			if err != nil {
				assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected read error: %v", err)
				break
			}
			var event Event
			require.NoError(t, json.Unmarshal(data, &event))
			types = append(types, event.Type)
		}

		require.Len(t, types, 31)
		assert.Equal(t, "scan.closed", types[30])
	}
}
