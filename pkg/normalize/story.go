package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

const storyTTLMillis = 24 * 60 * 60 * 1000

// Story field fallback table:
//
//	id          id, _id, storyId, story_id
//	authorAlias authorAlias, author_alias, author
//	mediaUrl    mediaUrl, media_url, fileUrl, file_url
//	caption     caption, text
//	timestamp   timestamp, createdAt, created_at  (required; now() fallback)
//	expiresAt   expiresAt, expires_at             (default timestamp + 24h)
//	viewers     viewers, viewedBy, viewed_by
func Story(raw map[string]any) *record.Story {
	s := &record.Story{
		Id:          str(raw, "id", "_id", "storyId", "story_id"),
		AuthorAlias: str(raw, "authorAlias", "author_alias", "author"),
		MediaUrl:    str(raw, "mediaUrl", "media_url", "fileUrl", "file_url"),
		Caption:     str(raw, "caption", "text"),
		Timestamp:   ts(raw, "timestamp", "createdAt", "created_at"),
		ExpiresAt:   i64(raw, "expiresAt", "expires_at"),
		Viewers:     strs(raw, "viewers", "viewedBy", "viewed_by"),
	}
	if s.ExpiresAt == 0 {
		s.ExpiresAt = s.Timestamp + storyTTLMillis
	}
	return s
}

func PatchStory(s *record.Story, raw map[string]any) {
	if has(raw, "mediaUrl", "media_url", "fileUrl", "file_url") {
		s.MediaUrl = str(raw, "mediaUrl", "media_url", "fileUrl", "file_url")
	}
	if has(raw, "caption", "text") {
		s.Caption = str(raw, "caption", "text")
	}
	if has(raw, "expiresAt", "expires_at") {
		s.ExpiresAt = i64(raw, "expiresAt", "expires_at")
	}
	if has(raw, "viewers", "viewedBy", "viewed_by") {
		s.Viewers = strs(raw, "viewers", "viewedBy", "viewed_by")
	}
}

func StoryMap(s *record.Story) map[string]any {
	return map[string]any{
		"id":          s.Id,
		"authorAlias": s.AuthorAlias,
		"mediaUrl":    s.MediaUrl,
		"caption":     s.Caption,
		"timestamp":   s.Timestamp,
		"expiresAt":   s.ExpiresAt,
		"viewers":     s.Viewers,
	}
}
