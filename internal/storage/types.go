package storage

import "errors"

var ErrNotFound = errors.New("not found")

// Config points the stores at their files.
//
// Relative file names are resolved against Dir.
type Config struct {
	Dir           string
	BackupFile    string
	TemplatesFile string
	LoopsFile     string
}

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = "./data"
	}
	if c.BackupFile == "" {
		c.BackupFile = "backup.json"
	}
	if c.TemplatesFile == "" {
		c.TemplatesFile = "templates.json"
	}
	if c.LoopsFile == "" {
		c.LoopsFile = "loop_config.json"
	}
	return c
}
