package record

// SettingsId is the fixed id of the process-wide settings singleton. The
// record has no identity of its own; it is init-from-remote-or-default,
// mutated by admin actions and never destroyed.
const SettingsId = "app_settings"

type Settings struct {
	Id               string `json:"id" msgpack:"id"`
	MaintenanceMode  bool   `json:"maintenanceMode" msgpack:"maintenance_mode"`
	RegistrationOpen bool   `json:"registrationOpen" msgpack:"registration_open"`
	Announcement     string `json:"announcement" msgpack:"announcement"`
	OfficialAlias    string `json:"officialAlias" msgpack:"official_alias"`
	UpdatedAt        int64  `json:"updatedAt" msgpack:"updated_at"`
}

func (s *Settings) RecordId() string { return s.Id }
func (s *Settings) SortKey() int64   { return s.UpdatedAt }

func DefaultSettings() *Settings {
	return &Settings{
		Id:               SettingsId,
		RegistrationOpen: true,
	}
}
