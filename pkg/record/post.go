package record

// Comment is one comment on a post. Replies nest recursively with
// unbounded depth; insertion order is preserved at every level.
type Comment struct {
	Id          string    `json:"id" msgpack:"id"`
	AuthorAlias string    `json:"authorAlias" msgpack:"author_alias"`
	Content     string    `json:"content" msgpack:"content"`
	Timestamp   int64     `json:"timestamp" msgpack:"timestamp"`
	Replies     []Comment `json:"replies" msgpack:"replies"`
}

type PollOption struct {
	Text   string   `json:"text" msgpack:"text"`
	Voters []string `json:"voters" msgpack:"voters"`
}

type Poll struct {
	Question string       `json:"question" msgpack:"question"`
	Options  []PollOption `json:"options" msgpack:"options"`
}

type Post struct {
	Id          string    `json:"id" msgpack:"id"`
	AuthorAlias string    `json:"authorAlias" msgpack:"author_alias"`
	Content     string    `json:"content" msgpack:"content"`
	Timestamp   int64     `json:"timestamp" msgpack:"timestamp"`
	Likes       []string  `json:"likes" msgpack:"likes"`
	Comments    []Comment `json:"comments" msgpack:"comments"`
	MediaUrls   []string  `json:"mediaUrls" msgpack:"media_urls"`
	RepostOf    string    `json:"repostOf,omitempty" msgpack:"repost_of,omitempty"`
	RepostCount int       `json:"repostCount" msgpack:"repost_count"`
	IsOfficial  bool      `json:"isOfficial" msgpack:"is_official"`
	Poll        *Poll     `json:"poll,omitempty" msgpack:"poll,omitempty"`
}

func (p *Post) RecordId() string { return p.Id }
func (p *Post) SortKey() int64   { return p.Timestamp }

// FindComment walks the comment tree and returns the comment with the
// given id, or nil.
func FindComment(comments []Comment, id string) *Comment {
	for i := range comments {
		if comments[i].Id == id {
			return &comments[i]
		}
		if c := FindComment(comments[i].Replies, id); c != nil {
			return c
		}
	}
	return nil
}
