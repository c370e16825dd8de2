package record

// EntityType identifies one synchronized collection.
type EntityType string

const (
	EntityPosts     EntityType = "posts"
	EntityAnonPosts EntityType = "anon_posts"
	EntityMessages  EntityType = "messages"
	EntityGroups    EntityType = "groups"
	EntityProfiles  EntityType = "profiles"
	EntitySettings  EntityType = "settings"
	EntityStories   EntityType = "stories"
	EntityChannels  EntityType = "channels"
)

// AllEntities lists every synchronized entity type in bootstrap order.
var AllEntities = []EntityType{
	EntityProfiles,
	EntityPosts,
	EntityAnonPosts,
	EntityMessages,
	EntityGroups,
	EntitySettings,
	EntityStories,
	EntityChannels,
}

// MirrorKey returns the fixed key the entity's collection is stored under
// in the local persistence mirror.
func (e EntityType) MirrorKey() string {
	switch e {
	case EntityMessages:
		return "local_msgs"
	default:
		return "local_" + string(e)
	}
}

// AnonymousAlias is the sentinel author for anonymous posts.
const AnonymousAlias = "anonymous"
