// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"physarum/internal/analysis"
	applog "physarum/internal/log"
)

// WebSocket broadcasts band vectors as JSON to connected clients, with
// rate limiting so a fast frame loop cannot flood the network.
//
// Thread safety: the client map is mutex-guarded; disconnected clients
// are pruned on write failure.
type WebSocket struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	upgrader  websocket.Upgrader
	server    *http.Server

	lastSend    time.Time
	minInterval time.Duration
}

// bandFrame is the wire payload: band magnitudes keyed by band name,
// plus the ordered raw vector for clients that index positionally.
type bandFrame struct {
	Type  string             `json:"type"`
	Bands map[string]float32 `json:"bands"`
	Order []float32          `json:"order"`
}

// NewWebSocket starts an HTTP server on the given port serving
// websocket upgrades at /spectrum.
func NewWebSocket(port string, minInterval time.Duration) *WebSocket {
	t := &WebSocket{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualization clients only.
			},
		},
		minInterval: minInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", t.handleWebSocket)
	t.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("transport: spectrum websocket listening on port %s", port)
		if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("transport: websocket server error: %v", err)
		}
	}()

	return t
}

func (t *WebSocket) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: websocket upgrade error: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = true
	t.clientsMu.Unlock()

	// Watch for the client closing its side.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMu.Lock()
				delete(t.clients, conn)
				t.clientsMu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Send broadcasts the band vector to all clients. Frames arriving
// faster than the configured interval are dropped, not queued.
func (t *WebSocket) Send(bands []float32) error {
	now := time.Now()
	if now.Sub(t.lastSend) < t.minInterval {
		return nil
	}
	t.lastSend = now

	frame := bandFrame{
		Type:  "bands",
		Bands: make(map[string]float32, len(bands)),
		Order: bands,
	}
	for i, v := range bands {
		if i < len(analysis.Bands) {
			frame.Bands[analysis.Bands[i].Name] = v
		}
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	t.clientsMu.Lock()
	for client := range t.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(t.clients, client)
		}
	}
	t.clientsMu.Unlock()

	return nil
}

// Close disconnects all clients and shuts the server down.
func (t *WebSocket) Close() error {
	t.clientsMu.Lock()
	for client := range t.clients {
		client.Close()
		delete(t.clients, client)
	}
	t.clientsMu.Unlock()

	return t.server.Close()
}

var _ Transport = (*WebSocket)(nil)
