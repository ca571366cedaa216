// Package workbook loads the Excel source tables the taxonomies and the IAC
// database are built from. Sheets come back as row-oriented string tables;
// the helpers here tolerate header drift in the published files by falling
// back to fuzzy column matching or an explicit two-column assumption.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheets reads every sheet of a workbook into a map of row tables, first row
// included (a header row is assumed present). A missing or unreadable file is
// fatal to the caller's build; there is no partial result.
func Sheets(path string) (map[string][][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		out[name] = rows
	}
	return out, nil
}

// Sheet reads a single named sheet, or the first sheet when name is empty.
func Sheet(path, name string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		name = list[0]
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	return rows, nil
}

// FindColumn returns the index of the first header whose lowercased text
// contains any of the given fragments, or -1.
func FindColumn(headers []string, fragments ...string) int {
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		for _, frag := range fragments {
			if strings.Contains(lower, frag) {
				return i
			}
		}
	}
	return -1
}

// ColumnIndex returns the index of the header exactly matching name
// (whitespace-insensitive), or -1.
func ColumnIndex(headers []string, name string) int {
	want := collapseSpaces(name)
	for i, h := range headers {
		if collapseSpaces(h) == want {
			return i
		}
	}
	return -1
}

// Cell fetches row[i], tolerating the ragged rows excelize produces for
// trailing empty cells.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
