package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	API      APIConfig      `json:"api"`
	Storage  StorageConfig  `json:"storage"`
	Schedule ScheduleConfig `json:"schedule"`
	Logging  LoggingConfig  `json:"logging"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// AdminID receives run reports, configuration errors, and new-user notices.
	AdminID int64 `json:"admin_id"`

	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

// APIConfig describes the remote likes endpoint.
type APIConfig struct {
	BaseURL string `json:"base_url,omitempty"`

	// MinLikes is the minimum likesAdded for a send to count as valid.
	MinLikes int `json:"min_likes,omitempty"`

	// Timeout is a Go duration string. Defaults to "60s"; the remote can be slow.
	Timeout string `json:"timeout,omitempty"`

	// KeyFile is where the API credential is persisted (set via /setkey).
	KeyFile string `json:"key_file,omitempty"`
}

type StorageConfig struct {
	Path string `json:"path,omitempty"`

	// BusyTimeout is a Go duration string (sqlite busy_timeout pragma).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// ScheduleConfig controls the daily dispatch trigger.
type ScheduleConfig struct {
	// Timezone is an IANA zone name, e.g. "America/Sao_Paulo".
	Timezone string `json:"timezone,omitempty"`

	// DailyAt is "HH:MM" local wall-clock time. Defaults to "00:00".
	DailyAt string `json:"daily_at,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

const (
	defaultBaseURL  = "https://7xhublikes.space"
	defaultMinLikes = 100
	defaultTimezone = "America/Sao_Paulo"
	defaultDailyAt  = "00:00"
)

// applyDefaults fills in omitted fields in place.
func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.MinLikes <= 0 {
		c.API.MinLikes = defaultMinLikes
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "60s"
	}
	if c.API.KeyFile == "" {
		c.API.KeyFile = "data/api_key.txt"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/likesbot.db"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = defaultTimezone
	}
	if c.Schedule.DailyAt == "" {
		c.Schedule.DailyAt = defaultDailyAt
	}
	if c.Telegram.PollTimeout == "" {
		c.Telegram.PollTimeout = "10s"
	}
}
