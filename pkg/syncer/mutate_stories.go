package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/driftid"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/record"
)

const storyTTLMillis = 24 * 60 * 60 * 1000

type PostStoryInput struct {
	MediaUrl string `validate:"required"`
	Caption  string `validate:"max=500"`
}

func (c *Core) PostStory(input PostStoryInput) (record.Story, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Story{}, dropMutation("post_story", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Story{}, dropMutation("post_story", err)
	}

	createdAt := now()
	story := &record.Story{
		Id:          driftid.GenToken(),
		AuthorAlias: c.alias,
		MediaUrl:    input.MediaUrl,
		Caption:     input.Caption,
		Timestamp:   createdAt,
		ExpiresAt:   createdAt + storyTTLMillis,
		Viewers:     []string{},
	}

	c.stories.MergeInsert(story)
	c.persist(record.EntityStories)
	c.submitWrite(record.EntityStories, channel.OpInsert, story.Id, normalize.StoryMap(story))
	return story.Clone(), nil
}

// ViewStory records the caller in the story's viewer set, once.
func (c *Core) ViewStory(storyId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var viewers []string
	ok := c.stories.MergeUpdate(storyId, func(s *record.Story) {
		s.Viewers = record.AddUnique(s.Viewers, c.alias)
		viewers = s.Viewers
	})
	if !ok {
		return dropMutation("view_story", ErrRecordNotFound)
	}
	c.persist(record.EntityStories)
	c.submitWrite(record.EntityStories, channel.OpUpdate, storyId, map[string]any{"viewers": viewers})
	return nil
}

type CreateChannelInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

func (c *Core) CreateChannel(input CreateChannelInput) (record.Channel, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Channel{}, dropMutation("create_channel", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Channel{}, dropMutation("create_channel", err)
	}

	ch := &record.Channel{
		Id:          driftid.GenToken(),
		Name:        input.Name,
		OwnerAlias:  c.alias,
		Description: input.Description,
		Subscribers: []string{},
		Timestamp:   now(),
	}

	c.channels.MergeInsert(ch)
	c.persist(record.EntityChannels)
	c.submitWrite(record.EntityChannels, channel.OpInsert, ch.Id, normalize.ChannelMap(ch))
	return ch.Clone(), nil
}

func (c *Core) SubscribeChannel(channelId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("subscribe_channel", err)
	}

	var subscribers []string
	ok := c.channels.MergeUpdate(channelId, func(ch *record.Channel) {
		ch.Subscribers = record.AddUnique(ch.Subscribers, c.alias)
		subscribers = ch.Subscribers
	})
	if !ok {
		return dropMutation("subscribe_channel", ErrRecordNotFound)
	}
	c.persist(record.EntityChannels)
	c.submitWrite(record.EntityChannels, channel.OpUpdate, channelId, map[string]any{"subscribers": subscribers})
	return nil
}
