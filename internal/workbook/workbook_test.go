package workbook

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates a temp xlsx with one sheet of rows.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestSheets(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"ARC", "Description"},
		{"4", "Energy"},
	})

	sheets, err := Sheets(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, ok := sheets["Sheet1"]
	if !ok {
		t.Fatalf("expected Sheet1 in %v", sheets)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "4" || rows[1][1] != "Energy" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
}

func TestSheetsMissingFile(t *testing.T) {
	if _, err := Sheets(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatal("expected error for missing workbook")
	}
}

func TestARCEntries(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"ARC", "Description"},
		{"4", "Energy"},
		{"4.8", "Thermal"},
		{"", "skipped"},
	})

	entries, err := ARCEntries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Code != "4" || entries[0].Label != "Energy" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
}

func TestARCEntriesHeaderless(t *testing.T) {
	// No recognizable header: the two-column assumption kicks in and the
	// first row is data.
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"2.42", "Drives"},
		{"4.81", "Insulation"},
	})

	entries, err := ARCEntries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Code != "2.42" {
		t.Errorf("expected first code 2.42, got %q", entries[0].Code)
	}
}

func TestNAICSEntries(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"Seq. No.", "2022 NAICS US   Code", "2022 NAICS US   Title"},
		{"1", "44-45", "Retail Trade"},
		{"2", "4411", "Automobile Dealers"},
		{"3", "", "blank code dropped"},
	})

	entries, err := NAICSEntries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Code != "44-45" || entries[0].Label != "Retail Trade" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
}

func TestNAICSEntriesMissingColumns(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"A", "B"},
		{"44", "Retail"},
	})
	if _, err := NAICSEntries(path); err == nil {
		t.Fatal("expected error when code/title columns are absent")
	}
}

func TestFindColumn(t *testing.T) {
	headers := []string{"Seq", "2022 NAICS US   Code", "2022 NAICS US   Title"}
	if got := FindColumn(headers, "code"); got != 1 {
		t.Errorf("code column: expected 1, got %d", got)
	}
	if got := FindColumn(headers, "title", "desc"); got != 2 {
		t.Errorf("title column: expected 2, got %d", got)
	}
	if got := FindColumn(headers, "missing"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

func TestCell(t *testing.T) {
	row := []string{"a", " b "}
	if got := Cell(row, 1); got != "b" {
		t.Errorf("expected trimmed cell, got %q", got)
	}
	if got := Cell(row, 5); got != "" {
		t.Errorf("expected empty for out-of-range, got %q", got)
	}
	if got := Cell(row, -1); got != "" {
		t.Errorf("expected empty for negative index, got %q", got)
	}
}
