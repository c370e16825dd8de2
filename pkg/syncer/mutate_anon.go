package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/driftid"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/record"
)

type CreateAnonPostInput struct {
	Content   string   `validate:"required,max=4000"`
	MediaUrls []string `validate:"max=10"`
	// ShowAlias attributes the post to the caller instead of the
	// anonymous sentinel.
	ShowAlias bool
}

func (c *Core) CreateAnonPost(input CreateAnonPostInput) (record.AnonPost, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.AnonPost{}, dropMutation("create_anon_post", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.AnonPost{}, dropMutation("create_anon_post", err)
	}

	author := record.AnonymousAlias
	if input.ShowAlias {
		author = c.alias
	}
	mediaUrls := input.MediaUrls
	if mediaUrls == nil {
		mediaUrls = []string{}
	}
	post := &record.AnonPost{
		Id:          driftid.GenToken(),
		AuthorAlias: author,
		Content:     input.Content,
		Timestamp:   now(),
		Likes:       []string{},
		Comments:    []record.Comment{},
		MediaUrls:   mediaUrls,
		Reactions:   []record.Reaction{},
		Bookmarks:   []string{},
	}

	c.anon.MergeInsert(post)
	if input.ShowAlias {
		c.profiles.MergeUpdate(c.alias, func(p *record.Profile) { p.TotalTransmissions++ })
		c.persist(record.EntityProfiles)
	}
	c.persist(record.EntityAnonPosts)

	c.submitWrite(record.EntityAnonPosts, channel.OpInsert, post.Id, normalize.AnonPostMap(post))
	return post.Clone(), nil
}

// ReactToAnonPost sets the caller's reaction, replacing any previous one.
func (c *Core) ReactToAnonPost(postId string, reactionType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("react_anon_post", err)
	}

	var reactions []record.Reaction
	ok := c.anon.MergeUpdate(postId, func(p *record.AnonPost) {
		kept := p.Reactions[:0]
		for _, r := range p.Reactions {
			if r.UserAlias != c.alias {
				kept = append(kept, r)
			}
		}
		p.Reactions = append(kept, record.Reaction{UserAlias: c.alias, ReactionType: reactionType})
		reactions = p.Reactions
	})
	if !ok {
		return dropMutation("react_anon_post", ErrRecordNotFound)
	}

	c.persist(record.EntityAnonPosts)
	c.submitWrite(record.EntityAnonPosts, channel.OpUpdate, postId, map[string]any{
		"reactions": normalize.ReactionMaps(reactions),
	})
	return nil
}

// ToggleBookmark flips the caller's bookmark on an anonymous post.
func (c *Core) ToggleBookmark(postId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("toggle_bookmark", err)
	}

	var bookmarks []string
	ok := c.anon.MergeUpdate(postId, func(p *record.AnonPost) {
		if record.Contains(p.Bookmarks, c.alias) {
			p.Bookmarks = record.Remove(p.Bookmarks, c.alias)
		} else {
			p.Bookmarks = record.AddUnique(p.Bookmarks, c.alias)
		}
		bookmarks = p.Bookmarks
	})
	if !ok {
		return dropMutation("toggle_bookmark", ErrRecordNotFound)
	}

	c.persist(record.EntityAnonPosts)
	c.submitWrite(record.EntityAnonPosts, channel.OpUpdate, postId, map[string]any{
		"bookmarks": bookmarks,
	})
	return nil
}
