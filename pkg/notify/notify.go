// Package notify is the fire-and-forget client of the notification
// subsystem. Mutations that warrant a notification (like, comment,
// follow, group invite) enqueue one; failures are captured and never
// block or roll back the optimistic update.
package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	KindLike        = "like"
	KindComment     = "comment"
	KindFollow      = "follow"
	KindGroupInvite = "group_invite"
)

type Notification struct {
	TargetAlias string `msgpack:"target_alias"`
	Kind        string `msgpack:"kind"`
	Title       string `msgpack:"title"`
	Content     string `msgpack:"content"`
	FromAlias   string `msgpack:"from_alias"`
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// RedisNotifier publishes notifications for the notification subsystem to
// consume.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (r *RedisNotifier) Send(ctx context.Context, n Notification) error {
	marshaled, err := msgpack.Marshal(&n)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, "notifications", marshaled).Err()
}

// Nop drops notifications; used in Local Resilience Mode.
type Nop struct{}

func (Nop) Send(ctx context.Context, n Notification) error { return nil }
