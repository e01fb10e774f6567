package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tcgmatch/internal/card"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// knownColumns maps lowercased header names to the documented column names.
var knownColumns = func() map[string]string {
	cols := []string{
		card.ColName, card.ColSetCode, card.ColCollectorNumber, card.ColFoil,
		card.ColCondition, card.ColLanguage, card.ColQuantity, card.ColPurchasePrice,
	}
	m := make(map[string]string, len(cols))
	for _, c := range cols {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// ReadInput reads at most maxSize bytes of export text, drops a leading
// UTF-8 BOM and replaces invalid UTF-8 with U+FFFD. maxSize <= 0 disables
// the limit.
func ReadInput(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrInputTooLarge, maxSize)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return bytes.ToValidUTF8(data, []byte("\uFFFD")), nil
}

// ParseRows tokenizes export text into raw rows keyed by column name. The
// first non-empty record is the header; blank records are skipped.
func ParseRows(data []byte) ([]card.RawRow, error) {
	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	start := 0
	for start < len(records) && isEmptyRow(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyInput
	}

	header := records[start]
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, col := range card.RequiredColumns {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	names := make([]string, len(header))
	for i, h := range header {
		h = CleanCell(h)
		if known, ok := knownColumns[strings.ToLower(h)]; ok {
			h = known
		}
		names[i] = h
	}

	var rows []card.RawRow
	for _, rec := range records[start+1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(card.RawRow, len(names))
		for i, name := range names {
			if i < len(rec) && name != "" {
				row[name] = CleanCell(rec[i])
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	return rows, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching; the first occurrence of
// a repeated name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Unwraps the Excel text formula ="..."
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// writeCSV serializes header and records.
func writeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsInputError reports whether err rejects the input itself rather than
// signalling a catalog or system failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMissingColumns) ||
		errors.Is(err, ErrInputTooLarge) ||
		errors.Is(err, ErrInvalidCSV) ||
		errors.Is(err, ErrInvalidLayout)
}
