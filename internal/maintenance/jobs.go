package maintenance

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ReportSweeper deletes reports older than a cutoff. *report.Writer implements it.
type ReportSweeper interface {
	Sweep(cutoff time.Time) (int, error)
}

// PhotoRefs lists photo references used by saved templates. *storage.TemplateStore implements it.
type PhotoRefs interface {
	PhotoRefs() map[string]bool
}

// SweepReports removes reports older than retention.
func SweepReports(w ReportSweeper, retention time.Duration, now func() time.Time) func(context.Context) (int, error) {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return w.Sweep(now().Add(-retention))
	}
}

// SweepDir removes regular files in dir (not recursive) last modified before
// now-maxAge. keep, when set, protects individual paths.
func SweepDir(dir string, maxAge time.Duration, keep func(path string) bool, now func() time.Time) func(context.Context) (int, error) {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) (int, error) {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		cutoff := now().Add(-maxAge)
		removed := 0
		var errs []error
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			if !e.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if keep != nil && keep(path) {
				continue
			}
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
				continue
			}
			removed++
		}
		return removed, errors.Join(errs...)
	}
}

// KeepReferenced protects files that a saved template points at. Paths are
// compared in cleaned absolute form.
func KeepReferenced(refs PhotoRefs) func(path string) bool {
	return func(path string) bool {
		want := absClean(path)
		for ref := range refs.PhotoRefs() {
			if absClean(ref) == want {
				return true
			}
		}
		return false
	}
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
