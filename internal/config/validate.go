package config

import (
	"errors"
	"fmt"
	"strings"

	"dispatchbot/internal/i18n"
	"dispatchbot/internal/maintenance"
	"dispatchbot/internal/model"
	"dispatchbot/internal/report"
	logx "dispatchbot/pkg/logx"
)

// Validate checks cfg after env overrides. All problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		add("telegram.token: required (or set %s)", EnvToken)
	}
	if cfg.Telegram.AdminUserID < 0 {
		add("telegram.admin_user_id: must be >= 0")
	}
	if strings.TrimSpace(cfg.Access.Password) == "" {
		add("access.password: required (or set %s)", EnvPassword)
	}
	if cfg.Access.MaxLoginAttempts < 0 {
		add("access.max_login_attempts: must be >= 0")
	}

	if !logx.ValidLevel(cfg.Logging.Level) {
		add("logging.level: unknown level %q", cfg.Logging.Level)
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add("logging.file.path: required when file logging is enabled")
	}
	if !logx.ValidLevel(cfg.Logging.Admin.MinLevel) {
		add("logging.admin.min_level: unknown level %q", cfg.Logging.Admin.MinLevel)
	}
	if cfg.Logging.Admin.RatePerSec < 0 {
		add("logging.admin.rate_per_sec: must be >= 0")
	}

	s := cfg.Sending
	if v := s.DefaultIntervalMinutes; v != 0 && (v < model.MinIntervalMinutes || v > model.MaxIntervalMinutes) {
		add("sending.default_interval_minutes: %d outside %d..%d", v, model.MinIntervalMinutes, model.MaxIntervalMinutes)
	}
	if v := s.DefaultBatchSize; v != 0 && (v < model.MinBatchSize || v > model.MaxBatchSize) {
		add("sending.default_batch_size: %d outside %d..%d", v, model.MinBatchSize, model.MaxBatchSize)
	}
	if s.RatePerSec < 0 {
		add("sending.rate_per_sec: must be >= 0")
	}
	if _, err := cfg.Durations(); err != nil {
		errs = append(errs, err)
	}

	if !report.ValidFormat(cfg.Reports.Format) {
		add("reports.format: unknown format %q (csv or xlsx)", cfg.Reports.Format)
	}
	if err := maintenance.New("", logx.Nop()).Validate(cfg.SweepSchedule()); err != nil {
		add("reports.sweep_schedule: %v", err)
	}

	if d := cfg.Languages.Default; d != "" {
		if _, ok := i18n.Parse(d); !ok {
			add("languages.default: unknown language %q", d)
		}
	}
	for _, l := range cfg.Languages.Supported {
		if _, ok := i18n.Parse(l); !ok {
			add("languages.supported: unknown language %q", l)
		}
	}
	return errors.Join(errs...)
}

// Translator builds the catalog selection from the languages section.
// Validate has already rejected unknown codes.
func (c *Config) Translator() *i18n.Translator {
	def, ok := i18n.Parse(c.Languages.Default)
	if !ok {
		def = i18n.PT
	}
	var supported []i18n.Lang
	for _, s := range c.Languages.Supported {
		if l, ok := i18n.Parse(s); ok {
			supported = append(supported, l)
		}
	}
	return i18n.New(def, supported)
}
