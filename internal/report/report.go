// Package report writes per-run delivery reports and prunes old ones.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dispatchbot/internal/model"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	filePrefix = "report_"
	sheetName  = "report"
)

var header = []string{"credential", "destination", "message", "status", "sent_at", "message_id", "error"}

// Summary counts a report's rows.
type Summary struct {
	Total  int
	Sent   int
	Failed int
}

type Writer struct {
	Dir    string
	Format string

	now func() time.Time
}

func NewWriter(dir, format string) *Writer {
	return &Writer{Dir: dir, Format: format}
}

// ValidFormat reports whether f names a supported report format.
func ValidFormat(f string) bool {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", FormatCSV, FormatXLSX:
		return true
	}
	return false
}

func (w *Writer) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *Writer) format() string {
	if strings.EqualFold(w.Format, FormatXLSX) {
		return FormatXLSX
	}
	return FormatCSV
}

// Generate writes rows to a new file and returns its path. Credentials are masked.
func (w *Writer) Generate(rows []model.Row, userID int64) (string, Summary, error) {
	sum := Summarize(rows)
	dir := w.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", sum, fmt.Errorf("report: mkdir: %w", err)
	}

	ext := w.format()
	path, err := uniquePath(dir, fmt.Sprintf("%s%d_%s", filePrefix, userID, w.clock().Format("20060102_150405")), ext)
	if err != nil {
		return "", sum, err
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, record(r))
	}

	if ext == FormatXLSX {
		err = writeXLSX(path, records)
	} else {
		err = writeCSV(path, records)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", sum, err
	}
	return path, sum, nil
}

func Summarize(rows []model.Row) Summary {
	sent, failed := model.CountStatus(rows)
	return Summary{Total: len(rows), Sent: sent, Failed: failed}
}

func record(r model.Row) []string {
	sentAt := ""
	if r.SentAt != nil {
		sentAt = r.SentAt.Format(time.RFC3339)
	}
	status := string(r.Status)
	if status == "" {
		status = string(model.StatusPending)
	}
	return []string{model.MaskCredential(r.Credential), r.Destination, r.Body, status, sentAt, r.MessageID, r.Error}
}

// uniquePath reserves dir/base.ext, appending -N when the name is taken.
func uniquePath(dir, base, ext string) (string, error) {
	for i := 0; i < 10000; i++ {
		name := base + "." + ext
		if i > 0 {
			name = fmt.Sprintf("%s-%d.%s", base, i, ext)
		}
		p := filepath.Join(dir, name)
		f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("report: create: %w", err)
		}
		_ = f.Close()
		return p, nil
	}
	return "", fmt.Errorf("report: no free file name for %s", base)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("report: open: %w", err)
	}
	// BOM so spreadsheet apps detect UTF-8.
	if _, err := f.WriteString("\xef\xbb\xbf"); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: write: %w", err)
	}
	cw := csv.NewWriter(f)
	_ = cw.Write(header)
	_ = cw.WriteAll(records)
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: write csv: %w", err)
	}
	return f.Close()
}

func writeXLSX(path string, records [][]string) error {
	x := excelize.NewFile()
	defer func() { _ = x.Close() }()

	if err := x.SetSheetName(x.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("report: xlsx sheet: %w", err)
	}
	put := func(row int, vals []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		line := make([]any, len(vals))
		for i, v := range vals {
			line[i] = v
		}
		return x.SetSheetRow(sheetName, cell, &line)
	}
	if err := put(1, header); err != nil {
		return fmt.Errorf("report: xlsx header: %w", err)
	}
	for i, rec := range records {
		if err := put(i+2, rec); err != nil {
			return fmt.Errorf("report: xlsx row %d: %w", i+2, err)
		}
	}
	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("report: save xlsx: %w", err)
	}
	return nil
}

// Sweep deletes report files in Dir last modified before cutoff.
func (w *Writer) Sweep(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(w.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("report: sweep: %w", err)
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.Dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
