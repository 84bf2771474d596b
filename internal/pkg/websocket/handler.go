package websocket

import (
	"fmt"
	"net/http"
)

// Subscribe upgrades the request and registers the connection on topic.
// The caller is responsible for authorizing the subscription.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, topic string, operatorID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, 64),
		operatorID: operatorID,
		topic:      topic,
		logger:     h.logger,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return fmt.Errorf("websocket hub is stopped")
	}

	go client.writePump()
	go client.readPump()

	return nil
}
