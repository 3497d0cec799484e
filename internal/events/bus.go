// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/yamba/manager/internal/logging"
	"github.com/yamba/manager/internal/metrics"
	"github.com/yamba/manager/internal/models"
)

// Topic carries every event. A single topic keeps one FIFO stream per
// subscriber, so the events of one operation (playlistsUpdated, then
// titlesUpdated, then flash) arrive in publish order; the MetadataEvent
// key tells them apart.
const Topic = "yamba.events"

// MetadataEvent is the message metadata key holding the websocket event name.
const MetadataEvent = "event"

// Bus is the in-process pub/sub connecting the engine to its subscribers.
// Publishers never learn who is listening; a publish with no subscribers
// succeeds and the payload is dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// Config tunes the bus.
type Config struct {
	BufferSize int
}

// New creates the bus. Publishing blocks until subscribers ack: gochannel
// delivers each message on its own goroutine, and the ack barrier is what
// serializes them into subscriber FIFO order. The bridge acks as soon as it
// has handed the message to the hub, so the barrier costs publishers
// microseconds; with no subscribers a publish never blocks.
func New(cfg Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            int64(cfg.BufferSize),
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		logger: logger,
	}
}

// Publish marshals payload and sends it on the event stream, tagging the
// message with the websocket event name. Returns marshal and transport
// errors; callers on the business path treat both as non-fatal.
func (b *Bus) Publish(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(MetadataEvent, event)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	metrics.EventsPublished.WithLabelValues(event).Inc()
	return nil
}

// Subscribe returns the event stream. The channel closes when ctx is
// canceled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// PublishPlaylistsUpdated broadcasts the authoritative playlist list.
// Best-effort: failures are logged and swallowed.
func (b *Bus) PublishPlaylistsUpdated(ctx context.Context, summaries []models.PlaylistSummary) {
	event := models.PlaylistsUpdatedEvent{JSON: summaries}
	if err := b.Publish(ctx, models.EventPlaylistsUpdated, event); err != nil {
		logging.Warn().Err(err).Msg("playlistsUpdated publish failed")
	}
}

// PublishTitlesUpdated broadcasts the title list of one playlist, or of an
// instance queue when playlist is models.QueuePlaylistID.
func (b *Bus) PublishTitlesUpdated(ctx context.Context, playlist string, titles []models.Title) {
	event := models.TitlesUpdatedEvent{JSON: titles, Playlist: playlist}
	if err := b.Publish(ctx, models.EventTitlesUpdated, event); err != nil {
		logging.Warn().Err(err).Str("playlist", playlist).Msg("titlesUpdated publish failed")
	}
}

// PublishFlash emits a user-targeted notification. The recipient filter sits
// on the subscriber side; the bus itself delivers to everyone.
func (b *Bus) PublishFlash(ctx context.Context, flashType, msg, userID string) {
	event := models.FlashEvent{Type: flashType, Message: msg, UserID: userID}
	if err := b.Publish(ctx, models.EventFlash, event); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("flash publish failed")
	}
}

// PublishInstancesUpdated broadcasts the authoritative instance list.
func (b *Bus) PublishInstancesUpdated(ctx context.Context, instances []models.Instance) {
	event := models.InstancesUpdatedEvent{JSON: instances}
	if err := b.Publish(ctx, models.EventInstancesUpdated, event); err != nil {
		logging.Warn().Err(err).Msg("instancesUpdated publish failed")
	}
}
