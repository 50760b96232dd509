package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dispatchbot/internal/model"
)

func sampleRows() []model.Row {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a, _ := model.NewRow("123456:ABCDEFGHIJ", "100", "hello")
	a.MarkSent("42", at)
	b, _ := model.NewRow("123456:ABCDEFGHIJ", "200", "bye")
	b.MarkFailed("chat not found", at)
	c, _ := model.NewRow("999:XYZ", "300", "later")
	return []model.Row{a, b, c}
}

func fixedWriter(dir, format string) *Writer {
	w := NewWriter(dir, format)
	w.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return w
}

func TestGenerateCSV(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w := fixedWriter(dir, "")

	path, sum, err := w.Generate(sampleRows(), 7)
	require.NoError(t, err)
	require.Equal(t, Summary{Total: 3, Sent: 1, Failed: 1}, sum)
	require.Equal(t, "report_7_20240501_123000.csv", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "\xef\xbb\xbf"))

	recs, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\xef\xbb\xbf"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	require.Equal(t, header, recs[0])
	require.NotContains(t, recs[1][0], "ABCDEFGHIJ")
	require.Equal(t, "sent", recs[1][3])
	require.Equal(t, "2024-05-01T10:00:00Z", recs[1][4])
	require.Equal(t, "chat not found", recs[2][6])
	require.Equal(t, "pending", recs[3][3])

	// Same second: a second report gets a distinct name.
	path2, _, err := w.Generate(sampleRows(), 7)
	require.NoError(t, err)
	require.NotEqual(t, path, path2)
}

func TestGenerateXLSX(t *testing.T) {
	t.Parallel()
	w := fixedWriter(t.TempDir(), FormatXLSX)
	path, _, err := w.Generate(sampleRows(), 1)
	require.NoError(t, err)
	require.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "destination", rows[0][1])
	require.Equal(t, "200", rows[2][1])
}

func TestGenerateEmpty(t *testing.T) {
	t.Parallel()
	path, sum, err := fixedWriter(t.TempDir(), FormatCSV).Generate(nil, 1)
	require.NoError(t, err)
	require.Zero(t, sum.Total)
	require.FileExists(t, path)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	old := filepath.Join(dir, "report_1_old.csv")
	fresh := filepath.Join(dir, "report_1_new.csv")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	n, err := NewWriter(dir, FormatCSV).Sweep(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoFileExists(t, old)
	require.FileExists(t, fresh)
	require.FileExists(t, other)

	n, err = NewWriter(filepath.Join(dir, "missing"), FormatCSV).Sweep(time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestValidFormat(t *testing.T) {
	t.Parallel()
	for f, want := range map[string]bool{"": true, "csv": true, "XLSX": true, "pdf": false} {
		if got := ValidFormat(f); got != want {
			t.Fatalf("ValidFormat(%q) = %v", f, got)
		}
	}
}
