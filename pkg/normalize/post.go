package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Post field fallback table:
//
//	id          id, _id, postId, post_id
//	authorAlias authorAlias, author_alias, author, u
//	content     content, text, p
//	timestamp   timestamp, createdAt, created_at, t   (required; now() fallback)
//	likes       likes, likedBy, liked_by
//	comments    comments
//	mediaUrls   mediaUrls, media_urls, fileUrl, file_url  (bare string ok)
//	repostOf    repostOf, repost_of, originalPostId, original_post_id
//	repostCount repostCount, repost_count
//	isOfficial  isOfficial, is_official
//	poll        poll
func Post(raw map[string]any) *record.Post {
	return &record.Post{
		Id:          str(raw, "id", "_id", "postId", "post_id"),
		AuthorAlias: str(raw, "authorAlias", "author_alias", "author", "u"),
		Content:     str(raw, "content", "text", "p"),
		Timestamp:   ts(raw, "timestamp", "createdAt", "created_at", "t"),
		Likes:       strs(raw, "likes", "likedBy", "liked_by"),
		Comments:    Comments(maps(raw, "comments")),
		MediaUrls:   strs(raw, "mediaUrls", "media_urls", "fileUrl", "file_url"),
		RepostOf:    str(raw, "repostOf", "repost_of", "originalPostId", "original_post_id"),
		RepostCount: intAt(raw, "repostCount", "repost_count"),
		IsOfficial:  boolAt(raw, "isOfficial", "is_official"),
		Poll:        poll(raw),
	}
}

// PatchPost shallow-merges raw into p using the same fallback table. Only
// fields present in raw are touched.
func PatchPost(p *record.Post, raw map[string]any) {
	if has(raw, "authorAlias", "author_alias", "author", "u") {
		p.AuthorAlias = str(raw, "authorAlias", "author_alias", "author", "u")
	}
	if has(raw, "content", "text", "p") {
		p.Content = str(raw, "content", "text", "p")
	}
	if has(raw, "timestamp", "createdAt", "created_at", "t") {
		p.Timestamp = i64(raw, "timestamp", "createdAt", "created_at", "t")
	}
	if has(raw, "likes", "likedBy", "liked_by") {
		p.Likes = strs(raw, "likes", "likedBy", "liked_by")
	}
	if has(raw, "comments") {
		p.Comments = Comments(maps(raw, "comments"))
	}
	if has(raw, "mediaUrls", "media_urls", "fileUrl", "file_url") {
		p.MediaUrls = strs(raw, "mediaUrls", "media_urls", "fileUrl", "file_url")
	}
	if has(raw, "repostOf", "repost_of", "originalPostId", "original_post_id") {
		p.RepostOf = str(raw, "repostOf", "repost_of", "originalPostId", "original_post_id")
	}
	if has(raw, "repostCount", "repost_count") {
		p.RepostCount = intAt(raw, "repostCount", "repost_count")
	}
	if has(raw, "isOfficial", "is_official") {
		p.IsOfficial = boolAt(raw, "isOfficial", "is_official")
	}
	if has(raw, "poll") {
		p.Poll = poll(raw)
	}
}

// PostMap renders p in the canonical camelCase wire form.
func PostMap(p *record.Post) map[string]any {
	m := map[string]any{
		"id":          p.Id,
		"authorAlias": p.AuthorAlias,
		"content":     p.Content,
		"timestamp":   p.Timestamp,
		"likes":       p.Likes,
		"comments":    CommentMaps(p.Comments),
		"mediaUrls":   p.MediaUrls,
		"repostCount": p.RepostCount,
		"isOfficial":  p.IsOfficial,
	}
	if p.RepostOf != "" {
		m["repostOf"] = p.RepostOf
	}
	if p.Poll != nil {
		m["poll"] = PollMap(p.Poll)
	}
	return m
}

// Comments normalizes a raw comment tree.
func Comments(rawComments []map[string]any) []record.Comment {
	out := []record.Comment{}
	for _, raw := range rawComments {
		out = append(out, record.Comment{
			Id:          str(raw, "id", "commentId", "comment_id"),
			AuthorAlias: str(raw, "authorAlias", "author_alias", "author", "u"),
			Content:     str(raw, "content", "text"),
			Timestamp:   ts(raw, "timestamp", "createdAt", "created_at"),
			Replies:     Comments(maps(raw, "replies")),
		})
	}
	return out
}

// CommentMaps renders a comment tree in canonical map form.
func CommentMaps(cs []record.Comment) []map[string]any {
	out := []map[string]any{}
	for i := range cs {
		out = append(out, map[string]any{
			"id":          cs[i].Id,
			"authorAlias": cs[i].AuthorAlias,
			"content":     cs[i].Content,
			"timestamp":   cs[i].Timestamp,
			"replies":     CommentMaps(cs[i].Replies),
		})
	}
	return out
}

func poll(raw map[string]any) *record.Poll {
	rawPoll, ok := mapAt(raw, "poll")
	if !ok {
		return nil
	}
	p := &record.Poll{
		Question: str(rawPoll, "question", "q"),
		Options:  []record.PollOption{},
	}
	for _, rawOpt := range maps(rawPoll, "options") {
		p.Options = append(p.Options, record.PollOption{
			Text:   str(rawOpt, "text", "option"),
			Voters: strs(rawOpt, "voters", "votes", "votedBy", "voted_by"),
		})
	}
	return p
}

// PollMap renders a poll in canonical map form.
func PollMap(p *record.Poll) map[string]any {
	opts := []map[string]any{}
	for i := range p.Options {
		opts = append(opts, map[string]any{
			"text":   p.Options[i].Text,
			"voters": p.Options[i].Voters,
		})
	}
	return map[string]any{"question": p.Question, "options": opts}
}
