package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Group field fallback table:
//
//	id           id, _id, groupId, group_id
//	name         name, groupName, group_name
//	creatorAlias creatorAlias, creator_alias, creator
//	admins       admins
//	members      members
//	settings     settings.whoCanSendMessage | settings.who_can_send_message
//	timestamp    timestamp, createdAt, created_at
//
// The admins-are-members invariant is re-established here so a malformed
// payload can never produce an admin outside the member set.
func Group(raw map[string]any) *record.Group {
	g := &record.Group{
		Id:           str(raw, "id", "_id", "groupId", "group_id"),
		Name:         str(raw, "name", "groupName", "group_name"),
		CreatorAlias: str(raw, "creatorAlias", "creator_alias", "creator"),
		Admins:       strs(raw, "admins"),
		Members:      strs(raw, "members"),
		Settings:     groupSettings(raw),
		Timestamp:    ts(raw, "timestamp", "createdAt", "created_at"),
	}
	if g.CreatorAlias != "" {
		g.Admins = record.AddUnique(g.Admins, g.CreatorAlias)
	}
	for _, admin := range g.Admins {
		g.Members = record.AddUnique(g.Members, admin)
	}
	return g
}

func PatchGroup(g *record.Group, raw map[string]any) {
	if has(raw, "name", "groupName", "group_name") {
		g.Name = str(raw, "name", "groupName", "group_name")
	}
	if has(raw, "admins") {
		g.Admins = strs(raw, "admins")
	}
	if has(raw, "members") {
		g.Members = strs(raw, "members")
	}
	if has(raw, "settings") {
		g.Settings = groupSettings(raw)
	}
	for _, admin := range g.Admins {
		g.Members = record.AddUnique(g.Members, admin)
	}
}

func GroupMap(g *record.Group) map[string]any {
	return map[string]any{
		"id":           g.Id,
		"name":         g.Name,
		"creatorAlias": g.CreatorAlias,
		"admins":       g.Admins,
		"members":      g.Members,
		"settings":     map[string]any{"whoCanSendMessage": g.Settings.WhoCanSendMessage},
		"timestamp":    g.Timestamp,
	}
}

func groupSettings(raw map[string]any) record.GroupSettings {
	s := record.GroupSettings{WhoCanSendMessage: record.SendersAll}
	rawSettings, ok := mapAt(raw, "settings")
	if !ok {
		return s
	}
	if who := str(rawSettings, "whoCanSendMessage", "who_can_send_message"); who != "" {
		s.WhoCanSendMessage = who
	}
	return s
}
