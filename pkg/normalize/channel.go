package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Channel field fallback table:
//
//	id          id, _id, channelId, channel_id
//	name        name, channelName, channel_name
//	ownerAlias  ownerAlias, owner_alias, owner
//	description description, about
//	subscribers subscribers, subscribedBy, subscribed_by
//	timestamp   timestamp, createdAt, created_at  (required; now() fallback)
func Channel(raw map[string]any) *record.Channel {
	return &record.Channel{
		Id:          str(raw, "id", "_id", "channelId", "channel_id"),
		Name:        str(raw, "name", "channelName", "channel_name"),
		OwnerAlias:  str(raw, "ownerAlias", "owner_alias", "owner"),
		Description: str(raw, "description", "about"),
		Subscribers: strs(raw, "subscribers", "subscribedBy", "subscribed_by"),
		Timestamp:   ts(raw, "timestamp", "createdAt", "created_at"),
	}
}

func PatchChannel(c *record.Channel, raw map[string]any) {
	if has(raw, "name", "channelName", "channel_name") {
		c.Name = str(raw, "name", "channelName", "channel_name")
	}
	if has(raw, "description", "about") {
		c.Description = str(raw, "description", "about")
	}
	if has(raw, "subscribers", "subscribedBy", "subscribed_by") {
		c.Subscribers = strs(raw, "subscribers", "subscribedBy", "subscribed_by")
	}
}

func ChannelMap(c *record.Channel) map[string]any {
	return map[string]any{
		"id":          c.Id,
		"name":        c.Name,
		"ownerAlias":  c.OwnerAlias,
		"description": c.Description,
		"subscribers": c.Subscribers,
		"timestamp":   c.Timestamp,
	}
}
