// Package syncer is the entity synchronization core. It owns every
// collection, serializes all merges behind one apply lock, and is the only
// component allowed to mutate state: optimistic local writes and pushed
// remote events both funnel through the same merge reducer, with the
// persistence mirror written through on every change.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/mirror"
	"github.com/driftwave/client/pkg/notify"
	"github.com/driftwave/client/pkg/record"
	"github.com/driftwave/client/pkg/store"
)

const writeTimeout = 15 * time.Second

type Config struct {
	Alias    string
	Remote   channel.Remote // nil enables Local Resilience Mode
	Mirror   *mirror.Mirror
	Notifier notify.Notifier
}

type Core struct {
	// mu is the apply lock: the single-threaded task queue of the source
	// model, rendered as one mutex every merge runs under.
	mu    sync.Mutex
	alias string

	posts    *store.Collection[*record.Post]
	anon     *store.Collection[*record.AnonPost]
	messages *store.Collection[*record.Message]
	groups   *store.Collection[*record.Group]
	profiles *store.Collection[*record.Profile]
	stories  *store.Collection[*record.Story]
	channels *store.Collection[*record.Channel]
	settings *record.Settings

	remote   channel.Remote
	mirror   *mirror.Mirror
	notifier notify.Notifier
	validate *validator.Validate

	streams      []channel.Stream
	subscribing  bool
	bootstrapped bool

	// writes tracks in-flight async remote writes so Flush can wait for
	// them to settle. They are never cancelled or rolled back.
	writes sync.WaitGroup
}

func New(cfg Config) *Core {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Core{
		alias:    cfg.Alias,
		posts:    store.NewCollection[*record.Post](),
		anon:     store.NewCollection[*record.AnonPost](),
		messages: store.NewCollection[*record.Message](),
		groups:   store.NewCollection[*record.Group](),
		profiles: store.NewFoldedCollection[*record.Profile](),
		stories:  store.NewCollection[*record.Story](),
		channels: store.NewCollection[*record.Channel](),
		settings: record.DefaultSettings(),
		remote:   cfg.Remote,
		mirror:   cfg.Mirror,
		notifier: notifier,
		validate: validator.New(),
	}
}

// Alias returns the identity mutations act as.
func (c *Core) Alias() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alias
}

// LocalOnly reports whether the core runs without a remote channel.
func (c *Core) LocalOnly() bool { return c.remote == nil }

// SetIdentity switches the acting alias. Open subscriptions are closed
// and reopened so no events for the old identity keep arriving.
func (c *Core) SetIdentity(ctx context.Context, alias string) {
	c.StopSubscriptions()
	c.mu.Lock()
	c.alias = alias
	bootstrapped := c.bootstrapped
	c.mu.Unlock()
	if bootstrapped {
		c.StartSubscriptions(ctx)
	}
}

// Flush blocks until all queued remote writes have completed or failed.
func (c *Core) Flush() { c.writes.Wait() }

// persist writes one collection through to the mirror. Mirror failures
// are logged, never surfaced: the in-memory state stays authoritative for
// the session.
func (c *Core) persist(entity record.EntityType) {
	if c.mirror == nil {
		return
	}
	var err error
	switch entity {
	case record.EntityPosts:
		err = c.mirror.Save(entity.MirrorKey(), c.posts.List())
	case record.EntityAnonPosts:
		err = c.mirror.Save(entity.MirrorKey(), c.anon.List())
	case record.EntityMessages:
		err = c.mirror.Save(entity.MirrorKey(), c.messages.List())
	case record.EntityGroups:
		err = c.mirror.Save(entity.MirrorKey(), c.groups.List())
	case record.EntityProfiles:
		err = c.mirror.Save(entity.MirrorKey(), c.profiles.List())
	case record.EntitySettings:
		err = c.mirror.Save(entity.MirrorKey(), c.settings)
	case record.EntityStories:
		err = c.mirror.Save(entity.MirrorKey(), c.stories.List())
	case record.EntityChannels:
		err = c.mirror.Save(entity.MirrorKey(), c.channels.List())
	}
	if err != nil {
		logger.Error("mirror write-through failed", zap.String("entity", string(entity)), zap.Error(err))
	}
}

// submitWrite queues the remote half of an optimistic mutation. The local
// state is already committed; a failure is logged and the divergence left
// to heal on the next bootstrap.
func (c *Core) submitWrite(entity record.EntityType, op channel.Op, id string, payload map[string]any) {
	if c.remote == nil {
		return
	}
	// Every insert carries a fresh nonce so the remote side can de-dupe a
	// resubmitted payload.
	if op == channel.OpInsert && payload != nil {
		payload["nonce"] = uuid.NewString()
	}
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.remote.Write(ctx, entity, op, id, payload); err != nil {
			logger.Error("remote write failed, keeping optimistic state",
				zap.String("entity", string(entity)),
				zap.String("id", id),
				zap.Error(err))
			sentry.CaptureException(err)
		}
	}()
}

// enqueueNotification fans a notification out to the notification
// subsystem without blocking the mutation.
func (c *Core) enqueueNotification(n notify.Notification) {
	if n.TargetAlias == "" || n.TargetAlias == n.FromAlias {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.notifier.Send(ctx, n); err != nil {
			logger.Warn("notification enqueue failed",
				zap.String("kind", n.Kind),
				zap.String("target", n.TargetAlias),
				zap.Error(err))
		}
	}()
}

// actingProfile returns the profile of the current alias. Callers hold mu.
func (c *Core) actingProfile() (*record.Profile, bool) {
	return c.profiles.Get(c.alias)
}

// senderAllowed gates every user-initiated mutation: a banned or muted
// alias is dropped before any state changes.
func (c *Core) senderAllowed() error {
	p, ok := c.actingProfile()
	if !ok {
		return ErrNoProfile
	}
	if p.IsBanned {
		return ErrSenderBanned
	}
	if p.IsMuted {
		return ErrSenderMuted
	}
	return nil
}

// dropMutation logs a validation failure; the mutation is dropped with no
// user-facing surface beyond the log line.
func dropMutation(op string, err error) error {
	logger.Warn("mutation dropped", zap.String("op", op), zap.Error(err))
	return err
}

func now() int64 { return time.Now().UnixMilli() }

// Snapshots. Returned records are deep copies detached from live state;
// callers may keep them across mutations.

func (c *Core) Posts() []record.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.posts.List()
	out := make([]record.Post, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}

func (c *Core) AnonPosts() []record.AnonPost {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.anon.List()
	out := make([]record.AnonPost, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}

func (c *Core) Messages(groupId string) []record.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []record.Message{}
	for _, m := range c.messages.List() {
		if groupId == "" || m.GroupId == groupId {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (c *Core) Groups() []record.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.groups.List()
	out := make([]record.Group, len(list))
	for i, g := range list {
		out[i] = g.Clone()
	}
	return out
}

func (c *Core) Profiles() []record.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.profiles.List()
	out := make([]record.Profile, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}

func (c *Core) Profile(alias string) (record.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles.Get(alias)
	if !ok {
		return record.Profile{}, false
	}
	return p.Clone(), true
}

func (c *Core) Settings() record.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.settings
}

func (c *Core) Stories() []record.Story {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.stories.List()
	out := make([]record.Story, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

func (c *Core) Channels() []record.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.channels.List()
	out := make([]record.Channel, len(list))
	for i, ch := range list {
		out[i] = ch.Clone()
	}
	return out
}

func (c *Core) Post(id string) (record.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.posts.Get(id)
	if !ok {
		return record.Post{}, false
	}
	return p.Clone(), true
}

func (c *Core) Group(id string) (record.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups.Get(id)
	if !ok {
		return record.Group{}, false
	}
	return g.Clone(), true
}
