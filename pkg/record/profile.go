package record

// Profile is keyed by alias: display is case-sensitive, lookup is
// case-insensitive (the collection folds the key).
type Profile struct {
	Alias              string   `json:"alias" msgpack:"alias"`
	Bio                string   `json:"bio" msgpack:"bio"`
	AvatarUrl          string   `json:"avatarUrl" msgpack:"avatar_url"`
	Followers          []string `json:"followers" msgpack:"followers"`
	Following          []string `json:"following" msgpack:"following"`
	TotalTransmissions int      `json:"totalTransmissions" msgpack:"total_transmissions"`
	IsVerified         bool     `json:"isVerified" msgpack:"is_verified"`
	IsAdmin            bool     `json:"isAdmin" msgpack:"is_admin"`
	IsBanned           bool     `json:"isBanned" msgpack:"is_banned"`
	IsMuted            bool     `json:"isMuted" msgpack:"is_muted"`
	Timestamp          int64    `json:"timestamp" msgpack:"timestamp"`
}

func (p *Profile) RecordId() string { return p.Alias }
func (p *Profile) SortKey() int64   { return p.Timestamp }
