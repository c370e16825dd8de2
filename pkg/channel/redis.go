package channel

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/record"
)

// RedisChannel stores each collection in a hash ("col:<entity>", field =
// record id, value = msgpack payload) and pushes change events over
// pub/sub ("sync:<entity>"). The wire format of an event is the msgpack
// payload with a trailing op byte; deletes carry just the msgpack id.
type RedisChannel struct {
	client *redis.Client
}

func NewRedis(uri string) (*RedisChannel, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisChannel{client: client}, nil
}

// NewRedisWithClient wraps an existing client (tests).
func NewRedisWithClient(client *redis.Client) *RedisChannel {
	return &RedisChannel{client: client}
}

// Client exposes the underlying redis client so collaborators sharing the
// connection (the notifier) can reuse it.
func (r *RedisChannel) Client() *redis.Client { return r.client }

func collectionKey(entity record.EntityType) string { return "col:" + string(entity) }
func eventKey(entity record.EntityType) string      { return "sync:" + string(entity) }

func (r *RedisChannel) FetchSnapshot(ctx context.Context, entity record.EntityType) ([]map[string]any, error) {
	values, err := r.client.HGetAll(ctx, collectionKey(entity)).Result()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for id, blob := range values {
		var payload map[string]any
		if err := msgpack.Unmarshal([]byte(blob), &payload); err != nil {
			logger.Warn("redis channel: skipping undecodable record",
				zap.String("entity", string(entity)), zap.String("id", id), zap.Error(err))
			continue
		}
		out = append(out, payload)
	}
	return out, nil
}

func (r *RedisChannel) Write(ctx context.Context, entity record.EntityType, op Op, id string, payload map[string]any) error {
	if op == OpDelete {
		if err := r.client.HDel(ctx, collectionKey(entity), id).Err(); err != nil {
			return err
		}
		marshaled, err := msgpack.Marshal(id)
		if err != nil {
			return err
		}
		marshaled = append(marshaled, OpDelete)
		return r.client.Publish(ctx, eventKey(entity), marshaled).Err()
	}

	stored := payload
	if op == OpUpdate {
		// Merge the patch over whatever the store already holds so the
		// stored value stays complete.
		if existing, err := r.client.HGet(ctx, collectionKey(entity), id).Result(); err == nil {
			var current map[string]any
			if err := msgpack.Unmarshal([]byte(existing), &current); err == nil {
				for k, v := range payload {
					current[k] = v
				}
				stored = current
			}
		}
	}
	if stored == nil {
		stored = map[string]any{}
	}
	stored["id"] = id

	blob, err := msgpack.Marshal(stored)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, collectionKey(entity), id, blob).Err(); err != nil {
		return err
	}

	// The event carries the submitted payload, not the merged value, so
	// updates echo as patches.
	eventPayload := payload
	if eventPayload == nil {
		eventPayload = map[string]any{}
	}
	eventPayload["id"] = id
	marshaled, err := msgpack.Marshal(eventPayload)
	if err != nil {
		return err
	}
	marshaled = append(marshaled, op)
	return r.client.Publish(ctx, eventKey(entity), marshaled).Err()
}

func (r *RedisChannel) Subscribe(ctx context.Context, entity record.EntityType) (Stream, error) {
	pubsub := r.client.Subscribe(ctx, eventKey(entity))
	// Force the subscription onto the wire before returning so no event
	// published after Subscribe is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	stream := &redisStream{pubsub: pubsub, events: make(chan Event, 64)}
	go stream.pump(entity)
	return stream, nil
}

type redisStream struct {
	pubsub *redis.PubSub
	events chan Event
}

func (s *redisStream) pump(entity record.EntityType) {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		payload := []byte(msg.Payload)
		if len(payload) < 2 {
			continue
		}
		op := payload[len(payload)-1]
		body := payload[:len(payload)-1]

		ev := Event{Entity: entity, Op: op}
		if op == OpDelete {
			if err := msgpack.Unmarshal(body, &ev.Id); err != nil {
				logger.Warn("redis channel: bad delete event", zap.Error(err))
				continue
			}
		} else {
			if err := msgpack.Unmarshal(body, &ev.Payload); err != nil {
				logger.Warn("redis channel: bad event payload", zap.Error(err))
				continue
			}
			if id, ok := ev.Payload["id"].(string); ok {
				ev.Id = id
			}
		}
		s.events <- ev
	}
}

func (s *redisStream) Events() <-chan Event { return s.events }
func (s *redisStream) Close() error         { return s.pubsub.Close() }
