package normalize

import (
	"github.com/driftwave/client/pkg/record"
)

// Settings field fallback table:
//
//	maintenanceMode  maintenanceMode, maintenance_mode
//	registrationOpen registrationOpen, registration_open  (default true)
//	announcement     announcement, announcementText, announcement_text
//	officialAlias    officialAlias, official_alias
//	updatedAt        updatedAt, updated_at                (required; now() fallback)
func Settings(raw map[string]any) *record.Settings {
	return &record.Settings{
		Id:               record.SettingsId,
		MaintenanceMode:  boolAt(raw, "maintenanceMode", "maintenance_mode"),
		RegistrationOpen: boolDefault(raw, true, "registrationOpen", "registration_open"),
		Announcement:     str(raw, "announcement", "announcementText", "announcement_text"),
		OfficialAlias:    str(raw, "officialAlias", "official_alias"),
		UpdatedAt:        ts(raw, "updatedAt", "updated_at"),
	}
}

func PatchSettings(s *record.Settings, raw map[string]any) {
	if has(raw, "maintenanceMode", "maintenance_mode") {
		s.MaintenanceMode = boolAt(raw, "maintenanceMode", "maintenance_mode")
	}
	if has(raw, "registrationOpen", "registration_open") {
		s.RegistrationOpen = boolAt(raw, "registrationOpen", "registration_open")
	}
	if has(raw, "announcement", "announcementText", "announcement_text") {
		s.Announcement = str(raw, "announcement", "announcementText", "announcement_text")
	}
	if has(raw, "officialAlias", "official_alias") {
		s.OfficialAlias = str(raw, "officialAlias", "official_alias")
	}
	if has(raw, "updatedAt", "updated_at") {
		s.UpdatedAt = i64(raw, "updatedAt", "updated_at")
	}
}

func SettingsMap(s *record.Settings) map[string]any {
	return map[string]any{
		"id":               s.Id,
		"maintenanceMode":  s.MaintenanceMode,
		"registrationOpen": s.RegistrationOpen,
		"announcement":     s.Announcement,
		"officialAlias":    s.OfficialAlias,
		"updatedAt":        s.UpdatedAt,
	}
}
