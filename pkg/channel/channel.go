// Package channel wraps the remote store's request/response and
// push-subscription primitives. The sync core only sees this interface;
// transport and auth live behind it. A nil Remote means Local Resilience
// Mode: the persistence mirror is authoritative and no subscriptions are
// opened.
package channel

import (
	"context"
	"errors"

	"github.com/driftwave/client/pkg/record"
)

// Op classifies a change event or write.
type Op = uint8

const (
	OpInsert Op = 0
	OpUpdate Op = 1
	OpDelete Op = 2
)

var ErrUnreachable = errors.New("remote channel unreachable")

// Event is one pushed change, already split into operation class, target
// id and raw payload. Payload key naming is whatever the remote store
// uses; the normalizer resolves it.
type Event struct {
	Entity  record.EntityType
	Op      Op
	Id      string
	Payload map[string]any
}

// Stream delivers events for one (entity type, session) subscription until
// closed. Events are delivered in order within the stream.
type Stream interface {
	Events() <-chan Event
	Close() error
}

type Remote interface {
	// FetchSnapshot returns the full authoritative collection as raw
	// payload maps.
	FetchSnapshot(ctx context.Context, entity record.EntityType) ([]map[string]any, error)

	// Write submits one insert/update/delete. The write is expected to be
	// echoed back on the entity's stream.
	Write(ctx context.Context, entity record.EntityType, op Op, id string, payload map[string]any) error

	// Subscribe opens the push stream for one entity type. A single
	// attempt; on failure the caller continues degraded.
	Subscribe(ctx context.Context, entity record.EntityType) (Stream, error)
}
