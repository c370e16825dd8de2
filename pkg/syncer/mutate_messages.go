package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/driftid"
	"github.com/driftwave/client/pkg/normalize"
	"github.com/driftwave/client/pkg/record"
)

type SendMessageInput struct {
	GroupId   string `validate:"required"`
	Content   string `validate:"required,max=4000"`
	Type      string `validate:"omitempty,oneof=text image video"`
	ReplyToId string
}

// SendMessage posts a message into a group chat. Gates, in order: sender
// not banned or muted, group exists, sender is a member, and when the
// group restricts sending to admins the sender must be one. A gate
// failure leaves the collection untouched and produces no remote write.
func (c *Core) SendMessage(input SendMessageInput) (record.Message, error) {
	if err := c.validate.Struct(input); err != nil {
		return record.Message{}, dropMutation("send_message", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return record.Message{}, dropMutation("send_message", err)
	}

	group, ok := c.groups.Get(input.GroupId)
	if !ok {
		return record.Message{}, dropMutation("send_message", ErrRecordNotFound)
	}
	if !group.IsMember(c.alias) {
		return record.Message{}, dropMutation("send_message", ErrNotMember)
	}
	if group.Settings.WhoCanSendMessage == record.SendersAdmins && !group.IsAdmin(c.alias) {
		return record.Message{}, dropMutation("send_message", ErrNotPermitted)
	}

	msgType := input.Type
	if msgType == "" {
		msgType = record.MessageTypeText
	}
	msg := &record.Message{
		Id:          driftid.GenToken(),
		SenderAlias: c.alias,
		GroupId:     input.GroupId,
		Content:     input.Content,
		Type:        msgType,
		Timestamp:   now(),
		Reactions:   map[string][]string{},
		Likes:       []string{},
		ReplyToId:   input.ReplyToId,
	}

	// Live insert: known newest, appended directly.
	c.messages.MergeInsert(msg)
	c.persist(record.EntityMessages)

	c.submitWrite(record.EntityMessages, channel.OpInsert, msg.Id, normalize.MessageMap(msg))
	return msg.Clone(), nil
}

func (c *Core) LikeMessage(messageId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("like_message", err)
	}

	var likes []string
	ok := c.messages.MergeUpdate(messageId, func(m *record.Message) {
		m.Likes = record.AddUnique(m.Likes, c.alias)
		likes = m.Likes
	})
	if !ok {
		return dropMutation("like_message", ErrRecordNotFound)
	}
	c.persist(record.EntityMessages)
	c.submitWrite(record.EntityMessages, channel.OpUpdate, messageId, map[string]any{"likes": likes})
	return nil
}

// ReactToMessage toggles the caller's emoji reaction on a message.
func (c *Core) ReactToMessage(messageId string, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.senderAllowed(); err != nil {
		return dropMutation("react_message", err)
	}

	var reactions map[string][]string
	ok := c.messages.MergeUpdate(messageId, func(m *record.Message) {
		if m.Reactions == nil {
			m.Reactions = map[string][]string{}
		}
		if record.Contains(m.Reactions[emoji], c.alias) {
			m.Reactions[emoji] = record.Remove(m.Reactions[emoji], c.alias)
			if len(m.Reactions[emoji]) == 0 {
				delete(m.Reactions, emoji)
			}
		} else {
			m.Reactions[emoji] = record.AddUnique(m.Reactions[emoji], c.alias)
		}
		reactions = m.Reactions
	})
	if !ok {
		return dropMutation("react_message", ErrRecordNotFound)
	}
	c.persist(record.EntityMessages)
	c.submitWrite(record.EntityMessages, channel.OpUpdate, messageId, map[string]any{"reactions": reactions})
	return nil
}
