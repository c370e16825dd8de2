package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Message field fallback table:
//
//	id          id, _id, messageId, message_id
//	senderAlias senderAlias, sender_alias, sender, from
//	groupId     groupId, group_id
//	content     content, text
//	type        type, messageType, message_type   (default "text")
//	timestamp   timestamp, sentAt, sent_at        (required; now() fallback)
//	reactions   reactions                         (emoji -> aliases)
//	likes       likes, likedBy, liked_by
//	replyToId   replyToId, reply_to_id, replyTo, reply_to
func Message(raw map[string]any) *record.Message {
	msgType := str(raw, "type", "messageType", "message_type")
	if msgType == "" {
		msgType = record.MessageTypeText
	}
	return &record.Message{
		Id:          str(raw, "id", "_id", "messageId", "message_id"),
		SenderAlias: str(raw, "senderAlias", "sender_alias", "sender", "from"),
		GroupId:     str(raw, "groupId", "group_id"),
		Content:     str(raw, "content", "text"),
		Type:        msgType,
		Timestamp:   ts(raw, "timestamp", "sentAt", "sent_at"),
		Reactions:   emojiReactions(raw),
		Likes:       strs(raw, "likes", "likedBy", "liked_by"),
		ReplyToId:   str(raw, "replyToId", "reply_to_id", "replyTo", "reply_to"),
	}
}

func PatchMessage(m *record.Message, raw map[string]any) {
	if has(raw, "senderAlias", "sender_alias", "sender", "from") {
		m.SenderAlias = str(raw, "senderAlias", "sender_alias", "sender", "from")
	}
	if has(raw, "groupId", "group_id") {
		m.GroupId = str(raw, "groupId", "group_id")
	}
	if has(raw, "content", "text") {
		m.Content = str(raw, "content", "text")
	}
	if has(raw, "type", "messageType", "message_type") {
		m.Type = str(raw, "type", "messageType", "message_type")
	}
	if has(raw, "timestamp", "sentAt", "sent_at") {
		m.Timestamp = i64(raw, "timestamp", "sentAt", "sent_at")
	}
	if has(raw, "reactions") {
		m.Reactions = emojiReactions(raw)
	}
	if has(raw, "likes", "likedBy", "liked_by") {
		m.Likes = strs(raw, "likes", "likedBy", "liked_by")
	}
	if has(raw, "replyToId", "reply_to_id", "replyTo", "reply_to") {
		m.ReplyToId = str(raw, "replyToId", "reply_to_id", "replyTo", "reply_to")
	}
}

func MessageMap(m *record.Message) map[string]any {
	out := map[string]any{
		"id":          m.Id,
		"senderAlias": m.SenderAlias,
		"content":     m.Content,
		"type":        m.Type,
		"timestamp":   m.Timestamp,
		"reactions":   m.Reactions,
		"likes":       m.Likes,
	}
	if m.GroupId != "" {
		out["groupId"] = m.GroupId
	}
	if m.ReplyToId != "" {
		out["replyToId"] = m.ReplyToId
	}
	return out
}

func emojiReactions(raw map[string]any) map[string][]string {
	out := map[string][]string{}
	rawReactions, ok := mapAt(raw, "reactions")
	if !ok {
		if m, ok2 := pick(raw, "reactions"); ok2 {
			if typed, ok3 := m.(map[string][]string); ok3 {
				for emoji, aliases := range typed {
					out[emoji] = append([]string{}, aliases...)
				}
			}
		}
		return out
	}
	for emoji, v := range rawReactions {
		aliases := []string{}
		switch seq := v.(type) {
		case []string:
			aliases = append(aliases, seq...)
		case []any:
			for _, item := range seq {
				if s, ok := asString(item); ok {
					aliases = append(aliases, s)
				}
			}
		}
		out[emoji] = aliases
	}
	return out
}
