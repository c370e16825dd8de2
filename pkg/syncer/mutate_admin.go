package syncer

import (
	"github.com/driftwave/client/pkg/channel"
	"github.com/driftwave/client/pkg/record"
)

// requireAdmin gates moderation operations on the acting profile's admin
// flag. Callers hold mu.
func (c *Core) requireAdmin(op string) error {
	p, ok := c.actingProfile()
	if !ok || !p.IsAdmin {
		return dropMutation(op, ErrNotPermitted)
	}
	return nil
}

func (c *Core) SetUserBanned(alias string, banned bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAdmin("set_user_banned"); err != nil {
		return err
	}
	if !c.profiles.MergeUpdate(alias, func(p *record.Profile) { p.IsBanned = banned }) {
		return dropMutation("set_user_banned", ErrRecordNotFound)
	}
	c.persist(record.EntityProfiles)
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, alias, map[string]any{"isBanned": banned})
	return nil
}

func (c *Core) SetUserMuted(alias string, muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAdmin("set_user_muted"); err != nil {
		return err
	}
	if !c.profiles.MergeUpdate(alias, func(p *record.Profile) { p.IsMuted = muted }) {
		return dropMutation("set_user_muted", ErrRecordNotFound)
	}
	c.persist(record.EntityProfiles)
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, alias, map[string]any{"isMuted": muted})
	return nil
}

func (c *Core) SetUserVerified(alias string, verified bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAdmin("set_user_verified"); err != nil {
		return err
	}
	if !c.profiles.MergeUpdate(alias, func(p *record.Profile) { p.IsVerified = verified }) {
		return dropMutation("set_user_verified", ErrRecordNotFound)
	}
	c.persist(record.EntityProfiles)
	c.submitWrite(record.EntityProfiles, channel.OpUpdate, alias, map[string]any{"isVerified": verified})
	return nil
}

type UpdateSettingsInput struct {
	MaintenanceMode  *bool
	RegistrationOpen *bool
	Announcement     *string `validate:"omitempty,max=1000"`
	OfficialAlias    *string
}

// UpdateAppSettings patches the settings singleton; admin-only. Only
// fields set in the input are touched.
func (c *Core) UpdateAppSettings(input UpdateSettingsInput) error {
	if err := c.validate.Struct(input); err != nil {
		return dropMutation("update_app_settings", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAdmin("update_app_settings"); err != nil {
		return err
	}

	patch := map[string]any{}
	if input.MaintenanceMode != nil {
		c.settings.MaintenanceMode = *input.MaintenanceMode
		patch["maintenanceMode"] = *input.MaintenanceMode
	}
	if input.RegistrationOpen != nil {
		c.settings.RegistrationOpen = *input.RegistrationOpen
		patch["registrationOpen"] = *input.RegistrationOpen
	}
	if input.Announcement != nil {
		c.settings.Announcement = *input.Announcement
		patch["announcement"] = *input.Announcement
	}
	if input.OfficialAlias != nil {
		c.settings.OfficialAlias = *input.OfficialAlias
		patch["officialAlias"] = *input.OfficialAlias
	}
	if len(patch) == 0 {
		return nil
	}
	c.settings.UpdatedAt = now()
	patch["updatedAt"] = c.settings.UpdatedAt

	c.persist(record.EntitySettings)
	c.submitWrite(record.EntitySettings, channel.OpUpdate, record.SettingsId, patch)
	return nil
}
