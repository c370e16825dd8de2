package record

// Channel is a one-to-many broadcast feed owned by a single alias.
type Channel struct {
	Id          string   `json:"id" msgpack:"id"`
	Name        string   `json:"name" msgpack:"name"`
	OwnerAlias  string   `json:"ownerAlias" msgpack:"owner_alias"`
	Description string   `json:"description" msgpack:"description"`
	Subscribers []string `json:"subscribers" msgpack:"subscribers"`
	Timestamp   int64    `json:"timestamp" msgpack:"timestamp"`
}

func (c *Channel) RecordId() string { return c.Id }
func (c *Channel) SortKey() int64   { return c.Timestamp }
