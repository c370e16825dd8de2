package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// AnonPost shares the Post table plus:
//
//	reactions  reactions
//	bookmarks  bookmarks, bookmarkedBy, bookmarked_by
//
// A missing author resolves to the anonymous sentinel, not an empty alias.
func AnonPost(raw map[string]any) *record.AnonPost {
	p := Post(raw)
	if p.AuthorAlias == "" {
		p.AuthorAlias = record.AnonymousAlias
	}
	return &record.AnonPost{
		Id:          p.Id,
		AuthorAlias: p.AuthorAlias,
		Content:     p.Content,
		Timestamp:   p.Timestamp,
		Likes:       p.Likes,
		Comments:    p.Comments,
		MediaUrls:   p.MediaUrls,
		RepostOf:    p.RepostOf,
		RepostCount: p.RepostCount,
		IsOfficial:  p.IsOfficial,
		Poll:        p.Poll,
		Reactions:   reactions(maps(raw, "reactions")),
		Bookmarks:   strs(raw, "bookmarks", "bookmarkedBy", "bookmarked_by"),
	}
}

func PatchAnonPost(p *record.AnonPost, raw map[string]any) {
	base := record.Post{
		AuthorAlias: p.AuthorAlias,
		Content:     p.Content,
		Timestamp:   p.Timestamp,
		Likes:       p.Likes,
		Comments:    p.Comments,
		MediaUrls:   p.MediaUrls,
		RepostOf:    p.RepostOf,
		RepostCount: p.RepostCount,
		IsOfficial:  p.IsOfficial,
		Poll:        p.Poll,
	}
	PatchPost(&base, raw)
	p.AuthorAlias = base.AuthorAlias
	p.Content = base.Content
	p.Timestamp = base.Timestamp
	p.Likes = base.Likes
	p.Comments = base.Comments
	p.MediaUrls = base.MediaUrls
	p.RepostOf = base.RepostOf
	p.RepostCount = base.RepostCount
	p.IsOfficial = base.IsOfficial
	p.Poll = base.Poll
	if has(raw, "reactions") {
		p.Reactions = reactions(maps(raw, "reactions"))
	}
	if has(raw, "bookmarks", "bookmarkedBy", "bookmarked_by") {
		p.Bookmarks = strs(raw, "bookmarks", "bookmarkedBy", "bookmarked_by")
	}
}

func AnonPostMap(p *record.AnonPost) map[string]any {
	m := PostMap(&record.Post{
		Id:          p.Id,
		AuthorAlias: p.AuthorAlias,
		Content:     p.Content,
		Timestamp:   p.Timestamp,
		Likes:       p.Likes,
		Comments:    p.Comments,
		MediaUrls:   p.MediaUrls,
		RepostOf:    p.RepostOf,
		RepostCount: p.RepostCount,
		IsOfficial:  p.IsOfficial,
		Poll:        p.Poll,
	})
	m["reactions"] = ReactionMaps(p.Reactions)
	m["bookmarks"] = p.Bookmarks
	return m
}

func reactions(rawReactions []map[string]any) []record.Reaction {
	out := []record.Reaction{}
	for _, raw := range rawReactions {
		out = append(out, record.Reaction{
			UserAlias:    str(raw, "userAlias", "user_alias", "user"),
			ReactionType: str(raw, "reactionType", "reaction_type", "type"),
		})
	}
	return out
}

// ReactionMaps renders reactions in canonical map form.
func ReactionMaps(rs []record.Reaction) []map[string]any {
	out := []map[string]any{}
	for i := range rs {
		out = append(out, map[string]any{
			"userAlias":    rs[i].UserAlias,
			"reactionType": rs[i].ReactionType,
		})
	}
	return out
}
