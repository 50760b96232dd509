package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dispatchbot/internal/model"
	logx "dispatchbot/pkg/logx"
)

// TemplateStore persists templates as a JSON object keyed by name.
// The whole map is cached in memory and rewritten on every change.
type TemplateStore struct {
	path string
	log  logx.Logger
	now  func() time.Time

	mu    sync.RWMutex
	items map[string]model.Template
}

// OpenTemplateStore loads path (a missing file means no templates).
func OpenTemplateStore(path string, log logx.Logger) (*TemplateStore, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	items := map[string]model.Template{}
	if _, err := readJSON(path, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = map[string]model.Template{}
	}
	for name, t := range items {
		t.Name = name
		items[name] = t
	}
	return &TemplateStore{path: path, log: log, now: time.Now, items: items}, nil
}

func (s *TemplateStore) Get(ctx context.Context, name string) (model.Template, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[name]
	if !ok {
		return model.Template{}, false, nil
	}
	return t.Clone(), true, nil
}

// List returns templates sorted by name.
func (s *TemplateStore) List(ctx context.Context) ([]model.Template, error) {
	_ = ctx
	s.mu.RLock()
	out := make([]model.Template, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save creates or replaces the template named t.Name. CreatedAt is kept across edits.
func (s *TemplateStore) Save(ctx context.Context, t model.Template) (model.Template, error) {
	_ = ctx
	name, err := model.NormalizeTemplateName(t.Name)
	if err != nil {
		return model.Template{}, err
	}
	t = t.Clone()
	t.Name = name
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.items[name]; ok && !prev.CreatedAt.IsZero() {
		t.CreatedAt = prev.CreatedAt
	} else if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	next := cloneTemplates(s.items)
	next[name] = t
	if err := writeJSONAtomic(s.path, next); err != nil {
		s.log.Warn("templates write failed", logx.String("path", s.path), logx.Err(err))
		return model.Template{}, err
	}
	s.items = next
	return t.Clone(), nil
}

// Delete removes a template. References held elsewhere are left as-is.
func (s *TemplateStore) Delete(ctx context.Context, name string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	next := cloneTemplates(s.items)
	delete(next, name)
	if err := writeJSONAtomic(s.path, next); err != nil {
		s.log.Warn("templates write failed", logx.String("path", s.path), logx.Err(err))
		return err
	}
	s.items = next
	return nil
}

// PhotoRefs returns every image reference in use (for media cleanup).
func (s *TemplateStore) PhotoRefs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.items))
	for _, t := range s.items {
		if t.Photo != "" {
			out[t.Photo] = true
		}
	}
	return out
}

func cloneTemplates(in map[string]model.Template) map[string]model.Template {
	out := make(map[string]model.Template, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
