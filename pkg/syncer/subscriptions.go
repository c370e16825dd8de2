package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/record"
)

// StartSubscriptions opens one push subscription per entity type. Each is
// a single attempt: if the remote channel is unreachable for an entity the
// layer keeps running degraded for it until the next session. Delivered
// events flow normalizer -> merge reducer in delivery order per entity;
// streams for different entities are independent.
func (c *Core) StartSubscriptions(ctx context.Context) {
	if c.remote == nil {
		return
	}
	c.mu.Lock()
	if c.subscribing || len(c.streams) > 0 {
		c.mu.Unlock()
		return
	}
	c.subscribing = true
	c.mu.Unlock()

	// Subscribe without the apply lock: connecting can take a network
	// timeout per entity and must not stall merges or snapshot reads.
	streams := make([]channel.Stream, 0, len(record.AllEntities))
	for _, entity := range record.AllEntities {
		stream, err := c.remote.Subscribe(ctx, entity)
		if err != nil {
			logger.Warn("subscription not established",
				zap.String("entity", string(entity)), zap.Error(err))
			continue
		}
		streams = append(streams, stream)
	}

	c.mu.Lock()
	c.streams = streams
	c.subscribing = false
	c.mu.Unlock()

	for _, stream := range streams {
		go c.dispatch(stream)
	}
}

func (c *Core) dispatch(stream channel.Stream) {
	for ev := range stream.Events() {
		c.applyEvent(ev)
	}
}

// StopSubscriptions closes every open stream. In-flight remote writes are
// left to complete or fail unobserved.
func (c *Core) StopSubscriptions() {
	c.mu.Lock()
	streams := c.streams
	c.streams = nil
	c.mu.Unlock()
	for _, s := range streams {
		if err := s.Close(); err != nil {
			logger.Warn("closing subscription", zap.Error(err))
		}
	}
}
