package record

type Story struct {
	Id          string   `json:"id" msgpack:"id"`
	AuthorAlias string   `json:"authorAlias" msgpack:"author_alias"`
	MediaUrl    string   `json:"mediaUrl" msgpack:"media_url"`
	Caption     string   `json:"caption" msgpack:"caption"`
	Timestamp   int64    `json:"timestamp" msgpack:"timestamp"`
	ExpiresAt   int64    `json:"expiresAt" msgpack:"expires_at"`
	Viewers     []string `json:"viewers" msgpack:"viewers"`
}

func (s *Story) RecordId() string { return s.Id }
func (s *Story) SortKey() int64   { return s.Timestamp }
