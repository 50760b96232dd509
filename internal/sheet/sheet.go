// Package sheet reads operator spreadsheets (CSV, XLSX) into dispatch rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"dispatchbot/internal/model"
)

var (
	ErrUnsupported    = errors.New("sheet: unsupported file type")
	ErrMissingColumns = errors.New("sheet: required columns not found")
	ErrNoRows         = errors.New("sheet: no valid rows")
)

var extensions = map[string]bool{".csv": true, ".xlsx": true, ".xlsm": true}

// header aliases, lower-cased.
var aliases = map[string]string{
	"api_key":     "credential",
	"credential":  "credential",
	"token":       "credential",
	"chat_id":     "destination",
	"destination": "destination",
	"chat":        "destination",
	"mensagem":    "body",
	"message":     "body",
	"body":        "body",
	"text":        "body",
}

// Legacy reports whether name is an old binary Excel workbook (.xls), which
// excelize cannot open. Callers ask the operator to re-save it as .xlsx.
func Legacy(name string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".xls")
}

// Supported reports whether name has an accepted spreadsheet extension.
func Supported(name string) bool {
	return extensions[strings.ToLower(filepath.Ext(strings.TrimSpace(name)))]
}

// Parse reads path and returns its valid rows in file order. Rows with a
// blank credential, destination or body are dropped.
func Parse(path string) ([]model.Row, error) {
	if !Supported(path) {
		return nil, ErrUnsupported
	}
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		records, err = readCSV(path)
	} else {
		records, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}
	return rowsFrom(records)
}

func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(raw))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	// Semicolon-separated exports come from locales with a decimal comma.
	if first, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		r.Comma = ';'
	}

	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: parse csv: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet: read xlsx: %w", err)
	}
	return rows, nil
}

func rowsFrom(records [][]string) ([]model.Row, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	cols := map[string]int{}
	for i, h := range records[0] {
		if key, ok := aliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	for _, k := range []string{"credential", "destination", "body"} {
		if _, ok := cols[k]; !ok {
			return nil, ErrMissingColumns
		}
	}

	cell := func(rec []string, key string) string {
		i := cols[key]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	out := make([]model.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, ok := model.NewRow(cell(rec, "credential"), cell(rec, "destination"), cell(rec, "body"))
		if ok {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}
