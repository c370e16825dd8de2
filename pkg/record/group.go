package record

const (
	SendersAll    = "all"
	SendersAdmins = "admins"
)

type GroupSettings struct {
	WhoCanSendMessage string `json:"whoCanSendMessage" msgpack:"who_can_send_message"`
}

// Group is a group chat. Every admin is also a member; the creator is
// seeded into both sets at creation.
type Group struct {
	Id           string        `json:"id" msgpack:"id"`
	Name         string        `json:"name" msgpack:"name"`
	CreatorAlias string        `json:"creatorAlias" msgpack:"creator_alias"`
	Admins       []string      `json:"admins" msgpack:"admins"`
	Members      []string      `json:"members" msgpack:"members"`
	Settings     GroupSettings `json:"settings" msgpack:"settings"`
	Timestamp    int64         `json:"timestamp" msgpack:"timestamp"`
}

func (g *Group) RecordId() string { return g.Id }
func (g *Group) SortKey() int64   { return g.Timestamp }

func (g *Group) IsAdmin(alias string) bool  { return Contains(g.Admins, alias) }
func (g *Group) IsMember(alias string) bool { return Contains(g.Members, alias) }
