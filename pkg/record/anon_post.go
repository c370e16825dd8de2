package record

// Reaction is one named reaction left on an anonymous post.
type Reaction struct {
	UserAlias    string `json:"userAlias" msgpack:"user_alias"`
	ReactionType string `json:"reactionType" msgpack:"reaction_type"`
}

// AnonPost has the same shape as Post plus reactions and bookmarks. The
// author may be the AnonymousAlias sentinel.
type AnonPost struct {
	Id          string     `json:"id" msgpack:"id"`
	AuthorAlias string     `json:"authorAlias" msgpack:"author_alias"`
	Content     string     `json:"content" msgpack:"content"`
	Timestamp   int64      `json:"timestamp" msgpack:"timestamp"`
	Likes       []string   `json:"likes" msgpack:"likes"`
	Comments    []Comment  `json:"comments" msgpack:"comments"`
	MediaUrls   []string   `json:"mediaUrls" msgpack:"media_urls"`
	RepostOf    string     `json:"repostOf,omitempty" msgpack:"repost_of,omitempty"`
	RepostCount int        `json:"repostCount" msgpack:"repost_count"`
	IsOfficial  bool       `json:"isOfficial" msgpack:"is_official"`
	Poll        *Poll      `json:"poll,omitempty" msgpack:"poll,omitempty"`
	Reactions   []Reaction `json:"reactions" msgpack:"reactions"`
	Bookmarks   []string   `json:"bookmarks" msgpack:"bookmarks"`
}

func (p *AnonPost) RecordId() string { return p.Id }
func (p *AnonPost) SortKey() int64   { return p.Timestamp }
