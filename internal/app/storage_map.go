package app

import (
	"path/filepath"
	"strings"

	"dispatchbot/internal/config"
	"dispatchbot/internal/conversation"
	"dispatchbot/internal/engine"
	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	"dispatchbot/internal/storage"
	logx "dispatchbot/pkg/logx"
)

// paths are the resolved on-disk locations derived from storage and reports.
type paths struct {
	Data      string
	Media     string
	Downloads string
	Reports   string
}

func mapStorageConfig(cfg *config.Config) storage.Config {
	sc := cfg.Storage
	return storage.Config{
		Dir:           strings.TrimSpace(sc.Dir),
		BackupFile:    strings.TrimSpace(sc.BackupFile),
		TemplatesFile: strings.TrimSpace(sc.TemplatesFile),
		LoopsFile:     strings.TrimSpace(sc.LoopsFile),
	}
}

func mapPaths(cfg *config.Config) paths {
	data := strings.TrimSpace(cfg.Storage.Dir)
	if data == "" {
		data = "./data"
	}
	under := func(name, def string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			name = def
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(data, name)
	}
	reports := strings.TrimSpace(cfg.Reports.Dir)
	if reports == "" {
		reports = "./reports"
	}
	return paths{
		Data:      data,
		Media:     under(cfg.Storage.MediaDir, "media"),
		Downloads: under(cfg.Storage.DownloadsDir, "downloads"),
		Reports:   reports,
	}
}

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Admin: logx.AdminConfig{
			Enabled:    cfg.Logging.Admin.Enabled && cfg.Telegram.AdminUserID != 0,
			MinLevel:   cfg.Logging.Admin.MinLevel,
			RatePerSec: cfg.Logging.Admin.RatePerSec,
		},
	}
}

func mapAccessConfig(cfg *config.Config) conversation.Config {
	n := cfg.Access.MaxLoginAttempts
	if n <= 0 {
		n = config.DefaultMaxLoginAttempts
	}
	return conversation.Config{Password: cfg.Access.Password, MaxLoginAttempts: n}
}

// mapTiming ignores parse errors; Validate already rejected them.
func mapTiming(cfg *config.Config) engine.Timing {
	d, _ := cfg.Durations()
	return engine.Timing{Unit: d.TimeUnit, PausePoll: d.PausePoll}
}

func mapRunDefaults(cfg *config.Config) model.RunConfig {
	rc := model.RunConfig{
		IntervalMinutes: cfg.Sending.DefaultIntervalMinutes,
		BatchSize:       cfg.Sending.DefaultBatchSize,
	}
	if rc.IntervalMinutes <= 0 {
		rc.IntervalMinutes = config.DefaultIntervalMinutes
	}
	if rc.BatchSize <= 0 {
		rc.BatchSize = config.DefaultBatchSize
	}
	return rc
}

// sessionDefaults seeds new sessions from the live config.
func sessionDefaults(current func() *config.Config) func(userID int64) session.Session {
	return func(userID int64) session.Session {
		return session.Session{
			State:  session.StateLogin,
			Config: mapRunDefaults(current()),
		}
	}
}
