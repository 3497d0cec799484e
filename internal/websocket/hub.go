// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
	"github.com/yamba/manager/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Client-originated control message types.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is one websocket frame as delivered to clients. Recipient routes
// flash messages and is never serialized; empty means every connection.
type Message struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Recipient string `json:"-"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until the context is canceled, then closes all
// clients and returns ctx.Err(). Designed for suture supervision: a restart
// starts from an empty client set without orphaned connections.
//
// Selection is priority-ordered (shutdown, then lifecycle, then broadcast) so
// the client set is always settled before a message fans out. Go's select
// picks randomly among ready channels; the staged non-blocking checks make
// the ordering deterministic instead.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebsocketClients.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients delivers one message to every connection whose filter
// accepts it. Clients are visited in registration order (ids from an atomic
// counter) so delivery order is reproducible. A client with a full send
// buffer is dropped: stale sessions must not stall live ones.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		if !client.allows(message) {
			metrics.FlashFiltered.Inc()
			continue
		}
		select {
		case client.send <- message:
		default:
			metrics.WebsocketDropped.Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WebsocketClients.Set(float64(len(h.clients)))
	}
}

// closeAllClients closes connections in id order for a consistent shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebsocketClients.Set(0)
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// Broadcast queues a message for fan-out. Non-blocking: if the hub's own
// buffer is full the message is dropped and logged, never propagated back to
// the publisher.
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	default:
		metrics.WebsocketDropped.Inc()
		logging.Warn().Str("event", message.Event).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastEvent queues an event with its payload for all connections.
func (h *Hub) BroadcastEvent(event string, data any) {
	h.Broadcast(Message{Event: event, Data: data})
}

// BroadcastFlash queues a flash notification for one user's sessions.
func (h *Hub) BroadcastFlash(flash models.FlashEvent) {
	h.Broadcast(Message{Event: models.EventFlash, Data: flash, Recipient: flash.UserID})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
