package syncer

import (
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/record"
	"github.com/driftwave/client/pkg/store"
)

// applyEvent merges one pushed change into local state. Every event goes
// normalizer -> merge reducer -> mirror write-through. Duplicate echoes of
// optimistic writes die in MergeInsert; updates for unknown ids are
// dropped rather than materialized.
func (c *Core) applyEvent(ev channel.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	switch ev.Entity {
	case record.EntityPosts:
		changed = applyTo(c.posts, ev, normalize.Post, normalize.PatchPost)
	case record.EntityAnonPosts:
		changed = applyTo(c.anon, ev, normalize.AnonPost, normalize.PatchAnonPost)
	case record.EntityMessages:
		changed = c.applyMessageEvent(ev)
	case record.EntityGroups:
		changed = applyTo(c.groups, ev, normalize.Group, normalize.PatchGroup)
	case record.EntityProfiles:
		changed = applyTo(c.profiles, ev, normalize.Profile, normalize.PatchProfile)
	case record.EntitySettings:
		// Singleton: inserts and updates both patch in place; the record
		// is never destroyed.
		if ev.Op == channel.OpDelete {
			return
		}
		normalize.PatchSettings(c.settings, ev.Payload)
		changed = true
	case record.EntityStories:
		changed = applyTo(c.stories, ev, normalize.Story, normalize.PatchStory)
	case record.EntityChannels:
		changed = applyTo(c.channels, ev, normalize.Channel, normalize.PatchChannel)
	default:
		logger.Warn("event for unknown entity", zap.String("entity", string(ev.Entity)))
		return
	}

	if changed {
		c.persist(ev.Entity)
	}
}

// applyTo runs one event through the merge reducer for a collection.
// Inserts from live subscriptions are known newest and appended directly;
// no re-sort happens here.
func applyTo[T store.Record](
	col *store.Collection[T],
	ev channel.Event,
	norm func(map[string]any) T,
	patch func(T, map[string]any),
) bool {
	switch ev.Op {
	case channel.OpInsert:
		rec := norm(ev.Payload)
		if rec.RecordId() == "" {
			logger.Warn("insert event without id", zap.String("entity", string(ev.Entity)))
			return false
		}
		return col.MergeInsert(rec)
	case channel.OpUpdate:
		id := ev.Id
		if id == "" {
			id = norm(ev.Payload).RecordId()
		}
		return col.MergeUpdate(id, func(rec T) { patch(rec, ev.Payload) })
	case channel.OpDelete:
		return col.MergeDelete(ev.Id)
	}
	return false
}

// applyMessageEvent adds the group-id gate on top of the generic path: a
// message without a group targets the removed direct/global table and is
// dropped with a warning instead of stored.
func (c *Core) applyMessageEvent(ev channel.Event) bool {
	if ev.Op == channel.OpInsert {
		msg := normalize.Message(ev.Payload)
		if msg.Id == "" {
			logger.Warn("message insert without id")
			return false
		}
		if msg.GroupId == "" {
			logger.Warn("dropping message", zap.String("id", msg.Id), zap.Error(ErrGroupRequired))
			return false
		}
		return c.messages.MergeInsert(msg)
	}
	return applyTo(c.messages, ev, normalize.Message, normalize.PatchMessage)
}
