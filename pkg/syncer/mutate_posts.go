package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/driftid"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/notify"
	"github.com/driftwave/client/pkg/record"
)

// Every mutation follows the same pattern: validate, mint the id locally,
// apply through the merge reducer synchronously (the UI sees it at once),
// write through the mirror, then submit the remote write asynchronously.
// A later subscription echo with the same id is absorbed as a no-op.
// Remote failures are logged; the optimistic state is never rolled back.

type PollInput struct {
	Question string   `validate:"required,max=200"`
	Options  []string `validate:"min=2,max=8,dive,required,max=100"`
}

type CreatePostInput struct {
	Content   string   `validate:"required,max=4000"`
	MediaUrls []string `validate:"max=10"`
	Poll      *PollInput
}

func (c *Core) CreatePost(input CreatePostInput) (record.Post, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Post{}, dropMutation("create_post", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Post{}, dropMutation("create_post", err)
	}

	mediaUrls := input.MediaUrls
	if mediaUrls == nil {
		mediaUrls = []string{}
	}
	post := &record.Post{
		Id:          driftid.GenToken(),
		AuthorAlias: c.alias,
		Content:     input.Content,
		Timestamp:   now(),
		Likes:       []string{},
		Comments:    []record.Comment{},
		MediaUrls:   mediaUrls,
	}
	if input.Poll != nil {
		post.Poll = &record.Poll{Question: input.Poll.Question, Options: []record.PollOption{}}
		for _, opt := range input.Poll.Options {
			post.Poll.Options = append(post.Poll.Options, record.PollOption{Text: opt, Voters: []string{}})
		}
	}
	if p, ok := c.actingProfile(); ok {
		post.IsOfficial = p.IsVerified && c.settings.OfficialAlias == c.alias
	}

	c.posts.MergeInsert(post)
	c.profiles.MergeUpdate(c.alias, func(p *record.Profile) { p.TotalTransmissions++ })
	c.persist(record.EntityPosts)
	c.persist(record.EntityProfiles)

	c.submitWrite(record.EntityPosts, channel.OpInsert, post.Id, normalize.PostMap(post))
	return post.Clone(), nil
}

// DeletePost removes one of the caller's posts; admins may remove any.
func (c *Core) DeletePost(postId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	post, ok := c.posts.Get(postId)
	if !ok {
		return dropMutation("delete_post", ErrRecordNotFound)
	}
	acting, _ := c.actingProfile()
	if post.AuthorAlias != c.alias && (acting == nil || !acting.IsAdmin) {
		return dropMutation("delete_post", ErrNotPermitted)
	}

	c.posts.MergeDelete(postId)
	c.persist(record.EntityPosts)
	c.submitWrite(record.EntityPosts, channel.OpDelete, postId, nil)
	return nil
}

func (c *Core) LikePost(postId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("like_post", err)
	}

	var likes []string
	var author string
	ok := c.posts.MergeUpdate(postId, func(p *record.Post) {
		p.Likes = record.AddUnique(p.Likes, c.alias)
		likes = p.Likes
		author = p.AuthorAlias
	})
	if !ok {
		return dropMutation("like_post", ErrRecordNotFound)
	}
	c.persist(record.EntityPosts)
	c.submitWrite(record.EntityPosts, channel.OpUpdate, postId, map[string]any{"likes": likes})
	c.enqueueNotification(notify.Notification{
		TargetAlias: author,
		Kind:        notify.KindLike,
		Title:       "New like",
		Content:     c.alias + " liked your post",
		FromAlias:   c.alias,
	})
	return nil
}

func (c *Core) UnlikePost(postId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var likes []string
	ok := c.posts.MergeUpdate(postId, func(p *record.Post) {
		p.Likes = record.Remove(p.Likes, c.alias)
		likes = p.Likes
	})
	if !ok {
		return dropMutation("unlike_post", ErrRecordNotFound)
	}
	c.persist(record.EntityPosts)
	c.submitWrite(record.EntityPosts, channel.OpUpdate, postId, map[string]any{"likes": likes})
	return nil
}

type AddCommentInput struct {
	PostId          string `validate:"required"`
	Content         string `validate:"required,max=2000"`
	ParentCommentId string
}

// AddComment appends a comment, or a reply to the parent comment's
// replies sequence when ParentCommentId is set.
func (c *Core) AddComment(input AddCommentInput) (record.Comment, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Comment{}, dropMutation("add_comment", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Comment{}, dropMutation("add_comment", err)
	}

	comment := record.Comment{
		Id:          driftid.GenToken(),
		AuthorAlias: c.alias,
		Content:     input.Content,
		Timestamp:   now(),
		Replies:     []record.Comment{},
	}

	var comments []record.Comment
	var author string
	attached := false
	ok := c.posts.MergeUpdate(input.PostId, func(p *record.Post) {
		author = p.AuthorAlias
		if input.ParentCommentId != "" {
			if parent := record.FindComment(p.Comments, input.ParentCommentId); parent != nil {
				parent.Replies = append(parent.Replies, comment)
				attached = true
			}
		} else {
			p.Comments = append(p.Comments, comment)
			attached = true
		}
		comments = p.Comments
	})
	if !ok {
		return record.Comment{}, dropMutation("add_comment", ErrRecordNotFound)
	}
	if !attached {
		return record.Comment{}, dropMutation("add_comment", ErrRecordNotFound)
	}

	c.persist(record.EntityPosts)
	c.submitWrite(record.EntityPosts, channel.OpUpdate, input.PostId, map[string]any{
		"comments": normalize.CommentMaps(comments),
	})
	c.enqueueNotification(notify.Notification{
		TargetAlias: author,
		Kind:        notify.KindComment,
		Title:       "New comment",
		Content:     c.alias + " commented on your post",
		FromAlias:   c.alias,
	})
	return comment, nil
}

// Repost creates a new post pointing at the original and bumps the
// original's repost count.
func (c *Core) Repost(postId string, quote string) (record.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Post{}, dropMutation("repost", err)
	}

	original, ok := c.posts.Get(postId)
	if !ok {
		return record.Post{}, dropMutation("repost", ErrRecordNotFound)
	}

	repost := &record.Post{
		Id:          driftid.GenToken(),
		AuthorAlias: c.alias,
		Content:     quote,
		Timestamp:   now(),
		Likes:       []string{},
		Comments:    []record.Comment{},
		MediaUrls:   []string{},
		RepostOf:    original.Id,
	}
	c.posts.MergeInsert(repost)

	var repostCount int
	c.posts.MergeUpdate(postId, func(p *record.Post) {
		p.RepostCount++
		repostCount = p.RepostCount
	})
	c.persist(record.EntityPosts)

	c.submitWrite(record.EntityPosts, channel.OpInsert, repost.Id, normalize.PostMap(repost))
	c.submitWrite(record.EntityPosts, channel.OpUpdate, postId, map[string]any{"repostCount": repostCount})
	return repost.Clone(), nil
}

// VotePoll records one vote per alias; voting again moves the vote.
func (c *Core) VotePoll(postId string, optionIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("vote_poll", err)
	}

	var poll *record.Poll
	voted := false
	ok := c.posts.MergeUpdate(postId, func(p *record.Post) {
		if p.Poll == nil || optionIndex < 0 || optionIndex >= len(p.Poll.Options) {
			return
		}
		for i := range p.Poll.Options {
			p.Poll.Options[i].Voters = record.Remove(p.Poll.Options[i].Voters, c.alias)
		}
		p.Poll.Options[optionIndex].Voters = record.AddUnique(p.Poll.Options[optionIndex].Voters, c.alias)
		poll = p.Poll
		voted = true
	})
	if !ok || !voted {
		return dropMutation("vote_poll", ErrRecordNotFound)
	}

	c.persist(record.EntityPosts)
	c.submitWrite(record.EntityPosts, channel.OpUpdate, postId, map[string]any{
		"poll": normalize.PollMap(poll),
	})
	return nil
}
