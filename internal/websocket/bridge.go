// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package websocket

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/yamba/manager/internal/events"
	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/models"
)

// BusSubscriber is the slice of the event bus the bridge needs. Satisfied by
// *events.Bus; tests substitute an in-memory implementation.
type BusSubscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Bridge forwards bus events into the hub. It is the only component that
// knows both sides: publishers talk to the bus, connections talk to the hub,
// and the bridge is the one-way pipe between them.
type Bridge struct {
	bus BusSubscriber
	hub *Hub
}

// NewBridge creates a bus-to-hub bridge.
func NewBridge(bus BusSubscriber, hub *Hub) *Bridge {
	return &Bridge{bus: bus, hub: hub}
}

// String names the bridge for supervisor logs.
func (b *Bridge) String() string {
	return "websocket-bridge"
}

// Serve subscribes to the event stream and forwards messages until the
// context is canceled. Implements suture.Service.
//
// Forwarding is deliberately single-threaded: the bus delivers one FIFO
// stream, and draining it from one goroutine is what keeps the events of
// one operation (playlistsUpdated, titlesUpdated, flash) in publish order
// all the way into the hub.
func (b *Bridge) Serve(ctx context.Context) error {
	messages, err := b.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Msg("websocket bridge started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("websocket bridge stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("event stream closed")
			}
			b.forward(msg)
			msg.Ack()
		}
	}
}

// forward translates one bus message into a hub broadcast. Flash payloads
// are decoded so the recipient travels in routing metadata; everything else
// is passed through as raw JSON.
func (b *Bridge) forward(msg *message.Message) {
	event := msg.Metadata.Get(events.MetadataEvent)
	if event == "" {
		logging.Warn().Str("message_uuid", msg.UUID).Msg("bus message without event metadata")
		return
	}

	if event == models.EventFlash {
		var flash models.FlashEvent
		if err := json.Unmarshal(msg.Payload, &flash); err != nil {
			logging.Warn().Err(err).Msg("failed to unmarshal flash payload")
			return
		}
		b.hub.BroadcastFlash(flash)
		return
	}

	b.hub.BroadcastEvent(event, json.RawMessage(msg.Payload))
}
