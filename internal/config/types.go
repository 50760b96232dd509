package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the whole file. Durations are Go duration strings ("30s", "72h").
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Access    AccessConfig    `json:"access"`
	Sending   SendingConfig   `json:"sending"`
	Storage   StorageConfig   `json:"storage"`
	Reports   ReportsConfig   `json:"reports"`
	Languages LanguagesConfig `json:"languages"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is the long polling timeout. Default 10s.
	PollTimeout string `json:"poll_timeout,omitempty"`
	// AdminUserID receives error logs and run summaries. 0 disables both.
	AdminUserID int64 `json:"admin_user_id,omitempty"`
}

type LoggingConfig struct {
	Level   string       `json:"level"`
	Console bool         `json:"console"`
	File    LoggingFile  `json:"file"`
	Admin   LoggingAdmin `json:"admin"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingAdmin struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

type AccessConfig struct {
	// Password is never logged. Prefer SYSTEM_PASSWORD in the environment.
	Password         string `json:"password"`
	MaxLoginAttempts int    `json:"max_login_attempts,omitempty"`
}

// SendingConfig holds the dispatch defaults.
//
// Defaults (when fields are omitted/zero):
//   - default_interval_minutes: 1
//   - default_batch_size: 10
//   - send_timeout: "30s"
//   - rate_per_sec: 20
//   - pause_poll: "5s"
//   - time_unit: "1m" (length of one configured minute; shorten for demos)
type SendingConfig struct {
	DefaultIntervalMinutes int    `json:"default_interval_minutes,omitempty"`
	DefaultBatchSize       int    `json:"default_batch_size,omitempty"`
	SendTimeout            string `json:"send_timeout,omitempty"`
	RatePerSec             int    `json:"rate_per_sec,omitempty"`
	PausePoll              string `json:"pause_poll,omitempty"`
	TimeUnit               string `json:"time_unit,omitempty"`
}

// StorageConfig places the JSON stores. File names are relative to Dir
// unless absolute.
type StorageConfig struct {
	Dir           string `json:"dir"`
	BackupFile    string `json:"backup_file,omitempty"`
	TemplatesFile string `json:"templates_file,omitempty"`
	LoopsFile     string `json:"loops_file,omitempty"`
	MediaDir      string `json:"media_dir,omitempty"`
	DownloadsDir  string `json:"downloads_dir,omitempty"`
}

type ReportsConfig struct {
	Dir string `json:"dir"`
	// Format is "csv" or "xlsx". Default csv.
	Format string `json:"format,omitempty"`
	// Retention deletes older reports and leftover downloads. Default "168h".
	Retention string `json:"retention,omitempty"`
	// SweepSchedule is a cron spec, descriptor or duration. Default "@daily".
	SweepSchedule string `json:"sweep_schedule,omitempty"`
}

type LanguagesConfig struct {
	Default   string   `json:"default,omitempty"`
	Supported []string `json:"supported,omitempty"`
}

const (
	DefaultPollTimeout      = 10 * time.Second
	DefaultSendTimeout      = 30 * time.Second
	DefaultPausePoll        = 5 * time.Second
	DefaultTimeUnit         = time.Minute
	DefaultRetention        = 7 * 24 * time.Hour
	DefaultSweepSchedule    = "@daily"
	DefaultMaxLoginAttempts = 5
	DefaultIntervalMinutes  = 1
	DefaultBatchSize        = 10
	DefaultRatePerSec       = 20
)

// Durations is the parsed form of every duration field.
type Durations struct {
	PollTimeout time.Duration
	SendTimeout time.Duration
	PausePoll   time.Duration
	TimeUnit    time.Duration
	Retention   time.Duration
}

// Durations parses the duration fields, falling back to defaults for empty values.
func (c *Config) Durations() (Durations, error) {
	var (
		d   Durations
		err error
	)
	if d.PollTimeout, err = durationOr("telegram.poll_timeout", c.Telegram.PollTimeout, DefaultPollTimeout); err != nil {
		return d, err
	}
	if d.SendTimeout, err = durationOr("sending.send_timeout", c.Sending.SendTimeout, DefaultSendTimeout); err != nil {
		return d, err
	}
	if d.PausePoll, err = durationOr("sending.pause_poll", c.Sending.PausePoll, DefaultPausePoll); err != nil {
		return d, err
	}
	if d.TimeUnit, err = durationOr("sending.time_unit", c.Sending.TimeUnit, DefaultTimeUnit); err != nil {
		return d, err
	}
	if d.Retention, err = durationOr("reports.retention", c.Reports.Retention, DefaultRetention); err != nil {
		return d, err
	}
	return d, nil
}

// SweepSchedule returns reports.sweep_schedule or the default.
func (c *Config) SweepSchedule() string {
	if c.Reports.SweepSchedule == "" {
		return DefaultSweepSchedule
	}
	return c.Reports.SweepSchedule
}

// durationOr parses a Go duration string. Empty or zero yields def; negative
// values are rejected.
func durationOr(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	case d < 0:
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	case d == 0:
		return def, nil
	}
	return d, nil
}
