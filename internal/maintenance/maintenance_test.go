package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	logx "dispatchbot/pkg/logx"
)

func TestNormalizeSpec(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, want string
		err      bool
	}{
		{"6h", "@every 6h0m0s", false},
		{"@daily", "@daily", false},
		{"0 3 * * *", "0 3 * * *", false},
		{"", "", true},
		{"abc", "", true},
		{"-5m", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeSpec(c.in)
		if c.err {
			require.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got)
	}

	s := New("", logx.Nop())
	require.NoError(t, s.Validate("*/10 * * * * *"))
	require.Error(t, s.Validate("61 * * * *"))
}

func TestAddRejectsBadJobs(t *testing.T) {
	t.Parallel()
	s := New("UTC", logx.Nop())
	noop := func(context.Context) (int, error) { return 0, nil }
	require.Error(t, s.Add(Job{Name: "x", Spec: "nope", Run: noop}))
	require.Error(t, s.Add(Job{Spec: "1h", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "ok", Spec: "1h", Run: noop}))
}

func TestScheduledJobRuns(t *testing.T) {
	t.Parallel()
	s := New("UTC", logx.Nop())
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1s", Run: func(context.Context) (int, error) {
		runs.Add(1)
		return 0, nil
	}}))
	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)
	s.Stop(ctx)
}

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	mt := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
}

type refs map[string]bool

func (r refs) PhotoRefs() map[string]bool { return r }

func TestSweepDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	old := filepath.Join(dir, "old.jpg")
	fresh := filepath.Join(dir, "fresh.jpg")
	kept := filepath.Join(dir, "kept.jpg")
	touch(t, old, 48*time.Hour)
	touch(t, fresh, time.Minute)
	touch(t, kept, 48*time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	job := SweepDir(dir, 24*time.Hour, KeepReferenced(refs{kept: true}), nil)
	n, err := job(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoFileExists(t, old)
	require.FileExists(t, fresh)
	require.FileExists(t, kept)
	require.DirExists(t, filepath.Join(dir, "sub"))

	n, err = SweepDir(filepath.Join(dir, "missing"), time.Hour, nil, nil)(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

type fakeSweeper struct{ cutoff time.Time }

func (f *fakeSweeper) Sweep(cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return 2, nil
}

func TestSweepReports(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fs := &fakeSweeper{}
	n, err := SweepReports(fs, 72*time.Hour, func() time.Time { return now })(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, now.Add(-72*time.Hour), fs.cutoff)
}

func TestRunNowRunsAllJobs(t *testing.T) {
	t.Parallel()
	s := New("", logx.Nop())
	var order []string
	for _, name := range []string{"a", "b"} {
		require.NoError(t, s.Add(Job{Name: name, Spec: "@hourly", Run: func(context.Context) (int, error) {
			order = append(order, name)
			return 1, nil
		}}))
	}
	s.RunNow(context.Background())
	require.Equal(t, []string{"a", "b"}, order)
}
