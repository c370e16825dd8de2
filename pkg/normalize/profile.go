package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Profile field fallback table:
//
//	alias              alias, username, handle
//	bio                bio, about
//	avatarUrl          avatarUrl, avatar_url, profilePic, profile_pic
//	followers          followers
//	following          following
//	totalTransmissions totalTransmissions, total_transmissions, totalPosts, total_posts
//	isVerified         isVerified, is_verified, verified
//	isAdmin            isAdmin, is_admin, admin
//	isBanned           isBanned, is_banned, banned
//	isMuted            isMuted, is_muted, muted
//	timestamp          timestamp, joinedAt, joined_at
func Profile(raw map[string]any) *record.Profile {
	return &record.Profile{
		Alias:              str(raw, "alias", "username", "handle"),
		Bio:                str(raw, "bio", "about"),
		AvatarUrl:          str(raw, "avatarUrl", "avatar_url", "profilePic", "profile_pic"),
		Followers:          strs(raw, "followers"),
		Following:          strs(raw, "following"),
		TotalTransmissions: intAt(raw, "totalTransmissions", "total_transmissions", "totalPosts", "total_posts"),
		IsVerified:         boolAt(raw, "isVerified", "is_verified", "verified"),
		IsAdmin:            boolAt(raw, "isAdmin", "is_admin", "admin"),
		IsBanned:           boolAt(raw, "isBanned", "is_banned", "banned"),
		IsMuted:            boolAt(raw, "isMuted", "is_muted", "muted"),
		Timestamp:          ts(raw, "timestamp", "joinedAt", "joined_at"),
	}
}

func PatchProfile(p *record.Profile, raw map[string]any) {
	if has(raw, "bio", "about") {
		p.Bio = str(raw, "bio", "about")
	}
	if has(raw, "avatarUrl", "avatar_url", "profilePic", "profile_pic") {
		p.AvatarUrl = str(raw, "avatarUrl", "avatar_url", "profilePic", "profile_pic")
	}
	if has(raw, "followers") {
		p.Followers = strs(raw, "followers")
	}
	if has(raw, "following") {
		p.Following = strs(raw, "following")
	}
	if has(raw, "totalTransmissions", "total_transmissions", "totalPosts", "total_posts") {
		p.TotalTransmissions = intAt(raw, "totalTransmissions", "total_transmissions", "totalPosts", "total_posts")
	}
	if has(raw, "isVerified", "is_verified", "verified") {
		p.IsVerified = boolAt(raw, "isVerified", "is_verified", "verified")
	}
	if has(raw, "isAdmin", "is_admin", "admin") {
		p.IsAdmin = boolAt(raw, "isAdmin", "is_admin", "admin")
	}
	if has(raw, "isBanned", "is_banned", "banned") {
		p.IsBanned = boolAt(raw, "isBanned", "is_banned", "banned")
	}
	if has(raw, "isMuted", "is_muted", "muted") {
		p.IsMuted = boolAt(raw, "isMuted", "is_muted", "muted")
	}
	if has(raw, "timestamp", "joinedAt", "joined_at") {
		p.Timestamp = i64(raw, "timestamp", "joinedAt", "joined_at")
	}
}

func ProfileMap(p *record.Profile) map[string]any {
	return map[string]any{
		"alias":              p.Alias,
		"bio":                p.Bio,
		"avatarUrl":          p.AvatarUrl,
		"followers":          p.Followers,
		"following":          p.Following,
		"totalTransmissions": p.TotalTransmissions,
		"isVerified":         p.IsVerified,
		"isAdmin":            p.IsAdmin,
		"isBanned":           p.IsBanned,
		"isMuted":            p.IsMuted,
		"timestamp":          p.Timestamp,
	}
}
