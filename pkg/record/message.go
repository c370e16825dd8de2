package record

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
)

type Message struct {
	Id          string              `json:"id" msgpack:"id"`
	SenderAlias string              `json:"senderAlias" msgpack:"sender_alias"`
	GroupId     string              `json:"groupId,omitempty" msgpack:"group_id,omitempty"`
	Content     string              `json:"content" msgpack:"content"`
	Type        string              `json:"type" msgpack:"type"`
	Timestamp   int64               `json:"timestamp" msgpack:"timestamp"`
	Reactions   map[string][]string `json:"reactions" msgpack:"reactions"` // emoji -> aliases
	Likes       []string            `json:"likes" msgpack:"likes"`
	ReplyToId   string              `json:"replyToId,omitempty" msgpack:"reply_to_id,omitempty"`
}

func (m *Message) RecordId() string { return m.Id }
func (m *Message) SortKey() int64   { return m.Timestamp }
