package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/notify"
	"github.com/driftwave/client/pkg/record"
)

type RegisterProfileInput struct {
	Alias string `validate:"required,min=2,max=32,alphanum"`
}

// RegisterProfile creates the profile for a new alias. The alias is the
// record's identity; lookup is case-insensitive, so an alias differing
// only in case is a duplicate and the insert is a no-op.
func (c *Core) RegisterProfile(input RegisterProfileInput) (record.Profile, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Profile{}, dropMutation("register_profile", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.settings.RegistrationOpen {
		return record.Profile{}, dropMutation("register_profile", ErrClosedReg)
	}

	profile := &record.Profile{
		Alias:     input.Alias,
		Followers: []string{},
		Following: []string{},
		Timestamp: now(),
	}
	if !c.profiles.MergeInsert(profile) {
		existing, _ := c.profiles.Get(input.Alias)
		return existing.Clone(), nil
	}
	c.persist(record.EntityProfiles)
	c.submitWrite(record.EntityProfiles, channel.OpInsert, profile.Alias, normalize.ProfileMap(profile))
	return profile.Clone(), nil
}

// Follow updates both sides in the same synchronous batch: the target
// joins the caller's following set and the caller joins the target's
// followers. The two remote writes are separate and non-atomic; that
// divergence window is accepted.
func (c *Core) Follow(targetAlias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("follow", err)
	}
	if targetAlias == c.alias {
		return dropMutation("follow", ErrInvalidInput)
	}
	if !c.profiles.Has(targetAlias) {
		return dropMutation("follow", ErrRecordNotFound)
	}

	var following, followers []string
	c.profiles.MergeUpdate(c.alias, func(p *record.Profile) {
		p.Following = record.AddUnique(p.Following, targetAlias)
		following = p.Following
	})
	c.profiles.MergeUpdate(targetAlias, func(p *record.Profile) {
		p.Followers = record.AddUnique(p.Followers, c.alias)
		followers = p.Followers
	})
	c.persist(record.EntityProfiles)

	c.submitWrite(record.EntityProfiles, channel.OpUpdate, c.alias, map[string]any{"following": following})
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, targetAlias, map[string]any{"followers": followers})
	c.enqueueNotification(notify.Notification{
		TargetAlias: targetAlias,
		Kind:        notify.KindFollow,
		Title:       "New follower",
		Content:     c.alias + " followed you",
		FromAlias:   c.alias,
	})
	return nil
}

func (c *Core) Unfollow(targetAlias string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.profiles.Has(targetAlias) {
		return dropMutation("unfollow", ErrRecordNotFound)
	}

	var following, followers []string
	c.profiles.MergeUpdate(c.alias, func(p *record.Profile) {
		p.Following = record.Remove(p.Following, targetAlias)
		following = p.Following
	})
	c.profiles.MergeUpdate(targetAlias, func(p *record.Profile) {
		p.Followers = record.Remove(p.Followers, c.alias)
		followers = p.Followers
	})
	c.persist(record.EntityProfiles)

	c.submitWrite(record.EntityProfiles, channel.OpUpdate, c.alias, map[string]any{"following": following})
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, targetAlias, map[string]any{"followers": followers})
	return nil
}

type UpdateProfileInput struct {
	Bio       string `validate:"max=500"`
	AvatarUrl string `validate:"omitempty,url"`
}

func (c *Core) UpdateProfile(input UpdateProfileInput) error {
	if err := c.validate.Struct(input); err != nil {
		return dropMutation("update_profile", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("update_profile", err)
	}

	ok := c.profiles.MergeUpdate(c.alias, func(p *record.Profile) {
		p.Bio = input.Bio
		p.AvatarUrl = input.AvatarUrl
	})
	if !ok {
		return dropMutation("update_profile", ErrNoProfile)
	}
	c.persist(record.EntityProfiles)
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, c.alias, map[string]any{
		"bio":       input.Bio,
		"avatarUrl": input.AvatarUrl,
	})
	return nil
}
