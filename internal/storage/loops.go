package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"dispatchbot/internal/model"
	logx "dispatchbot/pkg/logx"
)

// LoopStore persists per-user loop settings as {"<user id>": LoopConfig}.
type LoopStore struct {
	path string
	log  logx.Logger
	now  func() time.Time

	mu    sync.RWMutex
	items map[string]model.LoopConfig
}

func OpenLoopStore(path string, log logx.Logger) (*LoopStore, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	items := map[string]model.LoopConfig{}
	if _, err := readJSON(path, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = map[string]model.LoopConfig{}
	}
	return &LoopStore{path: path, log: log, now: time.Now, items: items}, nil
}

func loopKey(userID int64) string { return strconv.FormatInt(userID, 10) }

func (s *LoopStore) Get(ctx context.Context, userID int64) (model.LoopConfig, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[loopKey(userID)]
	return c, ok, nil
}

// Update applies fn to the user's config (zero value when missing) and persists the result.
func (s *LoopStore) Update(ctx context.Context, userID int64, fn func(c *model.LoopConfig)) (model.LoopConfig, error) {
	_ = ctx
	key := loopKey(userID)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.items[key]
	if fn != nil {
		fn(&c)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	next := make(map[string]model.LoopConfig, len(s.items)+1)
	for k, v := range s.items {
		next[k] = v
	}
	next[key] = c
	if err := writeJSONAtomic(s.path, next); err != nil {
		s.log.Warn("loop config write failed", logx.String("path", s.path), logx.Err(err))
		return model.LoopConfig{}, err
	}
	s.items = next
	return c, nil
}
