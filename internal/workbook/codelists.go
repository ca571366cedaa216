package workbook

import (
	"fmt"

	"github.com/iacdata/codetree/internal/hierarchy"
)

// ARCEntries loads the flat ARC code list from its workbook. The published
// file is a two-column sheet; when the ARC/Description headers are missing or
// renamed the first two columns are used as code and description.
func ARCEntries(path string) ([]hierarchy.CodeEntry, error) {
	rows, err := Sheet(path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ARC workbook %s: empty sheet", path)
	}

	headers := rows[0]
	codeCol := FindColumn(headers, "arc", "code")
	descCol := FindColumn(headers, "desc")

	data := rows[1:]
	if codeCol < 0 || descCol < 0 {
		// No recognizable header row: assume two bare columns and treat every
		// row as data.
		codeCol, descCol = 0, 1
		data = rows
	}

	var entries []hierarchy.CodeEntry
	for _, row := range data {
		code := Cell(row, codeCol)
		if code == "" {
			continue
		}
		entries = append(entries, hierarchy.CodeEntry{
			Code:  code,
			Label: Cell(row, descCol),
		})
	}
	return entries, nil
}

// NAICSEntries loads the flat NAICS code table from the Census workbook.
// Recent Census files title the columns "2022 NAICS US Code" / "2022 NAICS US
// Title" with inconsistent internal spacing, so columns are located by
// fragment match.
func NAICSEntries(path string) ([]hierarchy.CodeEntry, error) {
	rows, err := Sheet(path, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("NAICS workbook %s: empty sheet", path)
	}

	headers := rows[0]
	codeCol := FindColumn(headers, "code")
	titleCol := FindColumn(headers, "title", "desc")
	if codeCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("NAICS workbook %s: could not locate code/title columns in %v", path, headers)
	}

	var entries []hierarchy.CodeEntry
	for _, row := range rows[1:] {
		code := Cell(row, codeCol)
		if code == "" {
			continue
		}
		entries = append(entries, hierarchy.CodeEntry{
			Code:  code,
			Label: Cell(row, titleCol),
		})
	}
	return entries, nil
}
