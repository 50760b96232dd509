package storage

import (
	"context"
	"sync"
	"time"

	"dispatchbot/internal/model"
	logx "dispatchbot/pkg/logx"
)

// backupRecord is the on-disk envelope of the backup file.
type backupRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Data      model.Snapshot `json:"data"`
}

// BackupStore holds at most one snapshot system-wide.
type BackupStore struct {
	path string
	log  logx.Logger
	now  func() time.Time

	mu sync.Mutex
}

func NewBackupStore(path string, log logx.Logger) *BackupStore {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &BackupStore{path: path, log: log, now: time.Now}
}

func (b *BackupStore) Path() string { return b.path }

// Save replaces the slot with snap. A zero snap.Timestamp is set to now.
func (b *BackupStore) Save(ctx context.Context, snap model.Snapshot) error {
	_ = ctx
	now := b.now()
	if snap.Timestamp.IsZero() {
		snap.Timestamp = now
	}
	rec := backupRecord{Timestamp: now, Data: snap}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := writeJSONAtomic(b.path, rec); err != nil {
		b.log.Warn("backup write failed", logx.String("path", b.path), logx.Err(err))
		return err
	}
	return nil
}

// Load returns the current snapshot, or nil when no backup exists.
func (b *BackupStore) Load(ctx context.Context) (*model.Snapshot, error) {
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()

	var rec backupRecord
	found, err := readJSON(b.path, &rec)
	if err != nil {
		b.log.Warn("backup read failed", logx.String("path", b.path), logx.Err(err))
		return nil, err
	}
	if !found {
		return nil, nil
	}
	snap := rec.Data
	if snap.Timestamp.IsZero() {
		snap.Timestamp = rec.Timestamp
	}
	return &snap, nil
}

// Clear deletes the slot. Clearing an empty slot is not an error.
func (b *BackupStore) Clear(ctx context.Context) error {
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()
	return removeIfExists(b.path)
}
