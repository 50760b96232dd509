package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatchbot/internal/model"
	logx "dispatchbot/pkg/logx"
)

func TestBackupRoundTripAndEnvelope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")
	b := NewBackupStore(path, logx.Nop())

	snap, err := b.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, snap, "missing file means no backup")

	row, _ := model.NewRow("tok", "1", "hi")
	require.NoError(t, b.Save(ctx, model.Snapshot{
		OwnerUserID: 42,
		Queue:       []model.Row{row},
		Config:      model.RunConfig{IntervalMinutes: 1, BatchSize: 2},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Contains(t, env, "timestamp")
	require.Contains(t, env, "data")
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env["data"], &data))
	for _, k := range []string{"owner_user_id", "messages_queue", "processed_messages", "current_config", "timestamp"} {
		require.Contains(t, data, k)
	}

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.EqualValues(t, 42, got.OwnerUserID)
	require.Len(t, got.Queue, 1)
	require.Equal(t, "hi", got.Queue[0].Body)
	require.False(t, got.Timestamp.IsZero())

	require.NoError(t, b.Clear(ctx))
	require.NoError(t, b.Clear(ctx), "clearing twice is fine")
	got, err = b.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Empty(t, entries, "no temp files left behind")
}

func TestBackupCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	b := NewBackupStore(path, logx.Nop())
	snap, err := b.Load(context.Background())
	require.Error(t, err)
	require.Nil(t, snap)
}

func TestTemplateStoreCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.json")
	s, err := OpenTemplateStore(path, logx.Nop())
	require.NoError(t, err)

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }

	saved, err := s.Save(ctx, model.Template{
		Name:    " Promo ",
		Text:    "Hello",
		Photo:   "https://example.com/a.jpg",
		Buttons: []model.Button{{Text: "Go", URL: "https://example.com"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Promo", saved.Name)
	require.Equal(t, clock, saved.CreatedAt)

	clock = clock.Add(time.Hour)
	saved.Text = "Hello again"
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, saved.CreatedAt, updated.CreatedAt, "created_at survives edits")
	require.Equal(t, clock, updated.UpdatedAt)

	_, err = s.Save(ctx, model.Template{Name: "bad:name", Text: "x"})
	require.ErrorIs(t, err, model.ErrInvalidName)

	reopened, err := OpenTemplateStore(path, logx.Nop())
	require.NoError(t, err)
	got, ok, err := reopened.Get(ctx, "Promo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Hello again", got.Text)
	require.Len(t, got.Buttons, 1)
	require.True(t, reopened.PhotoRefs()["https://example.com/a.jpg"])

	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, reopened.Delete(ctx, "Promo"))
	require.ErrorIs(t, reopened.Delete(ctx, "Promo"), ErrNotFound)
	_, ok, _ = reopened.Get(ctx, "Promo")
	require.False(t, ok)
}

func TestLoopStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "loop_config.json")
	s, err := OpenLoopStore(path, logx.Nop())
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, 5)
	require.NoError(t, err)
	require.False(t, ok)

	c, err := s.Update(ctx, 5, func(c *model.LoopConfig) {
		c.Enabled = true
		c.RestartWhenFinished = true
		c.IntervalMinutes = 30
	})
	require.NoError(t, err)
	require.True(t, c.Restarts())
	require.False(t, c.CreatedAt.IsZero())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]model.LoopConfig
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Equal(t, 30, m["5"].IntervalMinutes)

	reopened, err := OpenLoopStore(path, logx.Nop())
	require.NoError(t, err)
	got, ok, err := reopened.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Enabled)
}

func TestOpenDefaults(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	st, err := Open(Config{Dir: dir}, logx.Nop())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "backup.json"), st.Backups.Path())
	_, err = os.Stat(dir)
	require.NoError(t, err)
}
