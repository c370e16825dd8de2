package syncer

import (
	"context"
	"sync"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/driftwave/client/pkg/logger"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/record"
)

// Bootstrap runs once per session: hydrate every collection from the
// mirror for an instant first paint, then (when a remote channel is
// configured) fetch authoritative snapshots in parallel, replace each
// collection wholesale, re-sort, derive computed fields and open the live
// subscriptions. A rejected snapshot fetch is logged and the session
// continues stale-but-functional on mirror data.
func (c *Core) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	if c.bootstrapped {
		c.mu.Unlock()
		return
	}
	c.bootstrapped = true

	c.hydrateFromMirror()

	if c.remote == nil {
		c.mu.Unlock()
		logger.Info("no remote channel configured, running in local resilience mode")
		return
	}
	c.mu.Unlock()

	snapshots := make([][]map[string]any, len(record.AllEntities))
	var wg sync.WaitGroup
	for i, entity := range record.AllEntities {
		wg.Add(1)
		go func(i int, entity record.EntityType) {
			defer wg.Done()
			raw, err := c.remote.FetchSnapshot(ctx, entity)
			if err != nil {
				logger.Error("snapshot fetch failed, keeping mirrored data",
					zap.String("entity", string(entity)), zap.Error(err))
				sentry.CaptureException(err)
				return
			}
			snapshots[i] = raw
		}(i, entity)
	}
	wg.Wait()

	c.mu.Lock()
	for i, entity := range record.AllEntities {
		if snapshots[i] == nil {
			continue
		}
		c.replaceFromSnapshot(entity, snapshots[i])
		c.persist(entity)
	}
	c.deriveTransmissionCounts()
	c.persist(record.EntityProfiles)
	c.mu.Unlock()

	c.StartSubscriptions(ctx)
}

// hydrateFromMirror loads every mirrored collection in stored order.
// Missing or corrupt values come back as empty collections.
func (c *Core) hydrateFromMirror() {
	if c.mirror == nil {
		return
	}
	var posts []*record.Post
	if c.mirror.Load(record.EntityPosts.MirrorKey(), &posts) {
		c.posts.Replace(posts)
	}
	var anon []*record.AnonPost
	if c.mirror.Load(record.EntityAnonPosts.MirrorKey(), &anon) {
		c.anon.Replace(anon)
	}
	var messages []*record.Message
	if c.mirror.Load(record.EntityMessages.MirrorKey(), &messages) {
		c.messages.Replace(messages)
	}
	var groups []*record.Group
	if c.mirror.Load(record.EntityGroups.MirrorKey(), &groups) {
		c.groups.Replace(groups)
	}
	var profiles []*record.Profile
	if c.mirror.Load(record.EntityProfiles.MirrorKey(), &profiles) {
		c.profiles.Replace(profiles)
	}
	var settings record.Settings
	if c.mirror.Load(record.EntitySettings.MirrorKey(), &settings) && settings.Id == record.SettingsId {
		c.settings = &settings
	}
	var stories []*record.Story
	if c.mirror.Load(record.EntityStories.MirrorKey(), &stories) {
		c.stories.Replace(stories)
	}
	var channels []*record.Channel
	if c.mirror.Load(record.EntityChannels.MirrorKey(), &channels) {
		c.channels.Replace(channels)
	}
}

// replaceFromSnapshot normalizes one authoritative result set and swaps it
// in, full replace rather than append. Bootstrap merges are not known
// newest, so timestamp-ordered collections are re-sorted afterwards.
func (c *Core) replaceFromSnapshot(entity record.EntityType, raw []map[string]any) {
	switch entity {
	case record.EntityPosts:
		recs := make([]*record.Post, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.Post(r))
		}
		c.posts.Replace(recs)
		c.posts.SortByTimestamp()
	case record.EntityAnonPosts:
		recs := make([]*record.AnonPost, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.AnonPost(r))
		}
		c.anon.Replace(recs)
		c.anon.SortByTimestamp()
	case record.EntityMessages:
		recs := make([]*record.Message, 0, len(raw))
		for _, r := range raw {
			msg := normalize.Message(r)
			if msg.GroupId == "" {
				logger.Warn("dropping snapshot message", zap.String("id", msg.Id), zap.Error(ErrGroupRequired))
				continue
			}
			recs = append(recs, msg)
		}
		c.messages.Replace(recs)
		c.messages.SortByTimestamp()
	case record.EntityGroups:
		recs := make([]*record.Group, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.Group(r))
		}
		c.groups.Replace(recs)
	case record.EntityProfiles:
		recs := make([]*record.Profile, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.Profile(r))
		}
		c.profiles.Replace(recs)
	case record.EntitySettings:
		if len(raw) > 0 {
			c.settings = normalize.Settings(raw[0])
		}
	case record.EntityStories:
		recs := make([]*record.Story, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.Story(r))
		}
		c.stories.Replace(recs)
		c.stories.SortByTimestamp()
	case record.EntityChannels:
		recs := make([]*record.Channel, 0, len(raw))
		for _, r := range raw {
			recs = append(recs, normalize.Channel(r))
		}
		c.channels.Replace(recs)
	}
}

// deriveTransmissionCounts recomputes per-profile post counts, which the
// remote store does not keep, by scanning the freshly loaded collections.
func (c *Core) deriveTransmissionCounts() {
	counts := map[string]int{}
	for _, p := range c.posts.List() {
		counts[p.AuthorAlias]++
	}
	for _, p := range c.anon.List() {
		if p.AuthorAlias != record.AnonymousAlias {
			counts[p.AuthorAlias]++
		}
	}
	for _, profile := range c.profiles.List() {
		alias := profile.Alias
		c.profiles.MergeUpdate(alias, func(p *record.Profile) {
			p.TotalTransmissions = counts[alias]
		})
	}
}
