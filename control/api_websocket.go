package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	engine "github.com/sv4u/plsync/sync"
)

const (
	// Maximum number of buffered messages per client.
	wsClientBufferSize = 64
	// Number of events retained for reconnecting clients.
	wsHistorySize = 100
	// Ping interval for keepalive.
	wsPingInterval = 30 * time.Second
	// Write deadline after which a slow client is dropped.
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: validate the Origin header against allowed hosts once this is
	// deployed beyond localhost.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventMessage is one sync lifecycle event on the wire.
type EventMessage struct {
	Timestamp int64             `json:"timestamp"`
	Type      string            `json:"type"`
	Stats     *engine.SyncStats `json:"stats,omitempty"`
}

// EventBroadcaster fans sync lifecycle events out to WebSocket clients.
type EventBroadcaster struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	history []EventMessage
}

// wsClient is a single WebSocket connection.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	mu     sync.Mutex
}

func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients: make(map[*wsClient]struct{}),
		history: make([]EventMessage, 0, wsHistorySize),
	}
}

// Publish adapts an engine event into a wire message and broadcasts it.
// Safe to pass as the orchestrator's notifier.
func (b *EventBroadcaster) Publish(event engine.Event) {
	b.Broadcast(EventMessage{
		Timestamp: time.Now().Unix(),
		Type:      event.Type,
		Stats:     event.Stats,
	})
}

// Broadcast sends an event to all connected clients and stores it in
// history.
func (b *EventBroadcaster) Broadcast(msg EventMessage) {
	b.mu.Lock()
	if len(b.history) >= wsHistorySize {
		b.history = b.history[1:]
	}
	b.history = append(b.history, msg)
	b.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WARN: event_marshal_failed error=%v", err)
		return
	}
	b.broadcastRaw(data)
}

// GetHistory returns the buffered events for reconnecting clients.
func (b *EventBroadcaster) GetHistory() []EventMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]EventMessage, len(b.history))
	copy(result, b.history)
	return result
}

func (b *EventBroadcaster) broadcastRaw(data []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the message.
			log.Printf("WARN: websocket_client_buffer_full")
		}
	}
}

func (b *EventBroadcaster) addClient(client *wsClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
}

func (b *EventBroadcaster) removeClient(client *wsClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, client)
}

// ClientCount returns the number of connected WebSocket clients.
func (b *EventBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// HandleWebSocket upgrades an HTTP connection and manages it.
func (b *EventBroadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket_upgrade_failed error=%v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsClientBufferSize),
	}

	// Replay history straight to the connection before registering the
	// client, so live events cannot interleave with the replay.
	for _, msg := range b.GetHistory() {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			return
		}
	}

	b.addClient(client)

	go b.writePump(client)
	go b.readPump(client)
}

// writePump pumps messages from the send channel to the connection.
func (b *EventBroadcaster) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		b.closeClient(client)
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One event per text frame so every frame is valid JSON.
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(client.send)
			for i := 0; i < n; i++ {
				if err := client.conn.WriteMessage(websocket.TextMessage, <-client.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads from the connection to detect disconnects.
func (b *EventBroadcaster) readPump(client *wsClient) {
	defer b.closeClient(client)
	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: websocket_unexpected_close error=%v", err)
			}
			break
		}
	}
}

// closeClient tears down a client connection. Lock ordering: b.mu then
// client.mu, never reversed. The client leaves the broadcast map before
// its channel closes, so broadcastRaw can never send on a closed channel.
func (b *EventBroadcaster) closeClient(client *wsClient) {
	b.removeClient(client)

	client.mu.Lock()
	defer client.mu.Unlock()
	if !client.closed {
		client.closed = true
		close(client.send)
		client.conn.Close()
	}
}
