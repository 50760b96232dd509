package config

import (
	"reflect"

	logx "dispatchbot/pkg/logx"
)

// SummarizeConfigChange lists the sections that differ between two configs
// plus safe log fields describing the new values. Secrets are never included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 7)
	attrs := make([]logx.Field, 0, 16)

	if oldCfg.Telegram != newCfg.Telegram {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.String("telegram.poll_timeout", newCfg.Telegram.PollTimeout),
			logx.Bool("telegram.admin_set", newCfg.Telegram.AdminUserID != 0),
			logx.Bool("telegram.token_changed", oldCfg.Telegram.Token != newCfg.Telegram.Token),
		)
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
			logx.Bool("logging.admin", newCfg.Logging.Admin.Enabled),
		)
	}
	if oldCfg.Access != newCfg.Access {
		changed = append(changed, "access")
		attrs = append(attrs,
			logx.Int("access.max_login_attempts", newCfg.Access.MaxLoginAttempts),
			logx.Bool("access.password_changed", oldCfg.Access.Password != newCfg.Access.Password),
		)
	}
	if oldCfg.Sending != newCfg.Sending {
		changed = append(changed, "sending")
		attrs = append(attrs,
			logx.Int("sending.default_interval_minutes", newCfg.Sending.DefaultIntervalMinutes),
			logx.Int("sending.default_batch_size", newCfg.Sending.DefaultBatchSize),
			logx.String("sending.time_unit", newCfg.Sending.TimeUnit),
		)
	}
	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
	}
	if oldCfg.Reports != newCfg.Reports {
		changed = append(changed, "reports")
		attrs = append(attrs,
			logx.String("reports.format", newCfg.Reports.Format),
			logx.String("reports.sweep_schedule", newCfg.SweepSchedule()),
		)
	}
	if !reflect.DeepEqual(oldCfg.Languages, newCfg.Languages) {
		changed = append(changed, "languages")
		attrs = append(attrs, logx.String("languages.default", newCfg.Languages.Default))
	}
	return changed, attrs
}
