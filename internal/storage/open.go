package storage

import (
	"os"
	"path/filepath"

	logx "dispatchbot/pkg/logx"
)

// Stores bundles the file-backed stores opened from one Config.
type Stores struct {
	Backups   *BackupStore
	Templates *TemplateStore
	Loops     *LoopStore
}

// Open creates the data directory and loads the template and loop files.
func Open(cfg Config, log logx.Logger) (*Stores, error) {
	cfg = cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	tpl, err := OpenTemplateStore(resolve(cfg.Dir, cfg.TemplatesFile), log.With(logx.String("store", "templates")))
	if err != nil {
		return nil, err
	}
	loops, err := OpenLoopStore(resolve(cfg.Dir, cfg.LoopsFile), log.With(logx.String("store", "loops")))
	if err != nil {
		return nil, err
	}
	return &Stores{
		Backups:   NewBackupStore(resolve(cfg.Dir, cfg.BackupFile), log.With(logx.String("store", "backup"))),
		Templates: tpl,
		Loops:     loops,
	}, nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
