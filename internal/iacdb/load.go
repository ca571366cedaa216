package iacdb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/iacdata/codetree/internal/workbook"
)

// kWhToMMBtu converts electricity from kWh to MMBtu (3412 BTU per kWh).
const kWhToMMBtu = 3412.0 / 1_000_000

// LoadStats reports how many rows a workbook load inserted.
type LoadStats struct {
	Assessments     int
	Recommendations int
	SkippedRows     int
}

// LoadWorkbook bulk-loads the ASSESS sheet and every RECC sheet of the IAC
// database workbook. Rows without a primary key are skipped and counted, not
// fatal; a missing ASSESS sheet is.
func (s *Store) LoadWorkbook(ctx context.Context, sheets map[string][][]string) (LoadStats, error) {
	var stats LoadStats

	assess, ok := sheets["ASSESS"]
	if !ok {
		return stats, fmt.Errorf("workbook has no ASSESS sheet")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	n, skipped, err := loadAssessments(ctx, tx, assess)
	if err != nil {
		return stats, err
	}
	stats.Assessments = n
	stats.SkippedRows += skipped

	for name, rows := range sheets {
		if !strings.HasPrefix(name, "RECC") {
			continue
		}
		n, skipped, err := loadRecommendations(ctx, tx, rows)
		if err != nil {
			return stats, fmt.Errorf("sheet %s: %w", name, err)
		}
		stats.Recommendations += n
		stats.SkippedRows += skipped
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit load: %w", err)
	}
	s.log.Info("loaded IAC workbook",
		"assessments", stats.Assessments,
		"recommendations", stats.Recommendations,
		"skipped", stats.SkippedRows,
	)
	return stats, nil
}

func loadAssessments(ctx context.Context, tx *sql.Tx, rows [][]string) (loaded, skipped int, err error) {
	if len(rows) == 0 {
		return 0, 0, fmt.Errorf("ASSESS sheet is empty")
	}
	col := headerIndex(rows[0])

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO assessments (
			id, center, fiscal_year, sic, naics, state, sales, employees,
			plant_area, products, num_recommendations,
			electricity_cost, electricity_usage,
			natural_gas_cost, natural_gas_usage,
			other_energy_cost, other_energy_usage,
			total_energy_cost, total_energy_usage
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare assessments: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows[1:] {
		id := cell(row, col, "ID")
		if id == "" {
			skipped++
			continue
		}
		elecCost := numCell(row, col, "EC_plant_cost")
		elecUsage := numCell(row, col, "EC_plant_usage")
		gasCost := numCell(row, col, "E2_plant_cost")
		gasUsage := numCell(row, col, "E2_plant_usage")
		otherCost := numCell(row, col, "E12_plant_cost")
		otherUsage := numCell(row, col, "E12_plant_usage")

		totalCost := sumFloats(elecCost, gasCost, otherCost)
		totalUsage := sumFloats(scaleFloat(elecUsage, kWhToMMBtu), gasUsage, otherUsage)

		_, err := stmt.ExecContext(ctx,
			id,
			cell(row, col, "CENTER"),
			numCell(row, col, "FY"),
			cell(row, col, "SIC"),
			cell(row, col, "NAICS"),
			cell(row, col, "STATE"),
			numCell(row, col, "SALES"),
			numCell(row, col, "EMPLOYEES"),
			numCell(row, col, "PLANT_AREA"),
			cell(row, col, "PRODUCTS"),
			numCell(row, col, "NUMARS"),
			elecCost, elecUsage,
			gasCost, gasUsage,
			otherCost, otherUsage,
			totalCost, totalUsage,
		)
		if err != nil {
			return loaded, skipped, fmt.Errorf("insert assessment %s: %w", id, err)
		}
		loaded++
	}
	return loaded, skipped, nil
}

func loadRecommendations(ctx context.Context, tx *sql.Tx, rows [][]string) (loaded, skipped int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	col := headerIndex(rows[0])

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO recommendations (
			super_id, assessment_id, rec_number, app_code, arc, imp_status,
			imp_cost, p_conserved, p_saved, s_conserved, s_saved,
			t_conserved, t_saved, q_conserved, q_saved,
			rebate, incremental, fiscal_year, ic_capital, ic_other,
			payback, bp_tool, total_savings, p_conserved_mmbtu, total_energy_saved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare recommendations: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows[1:] {
		superID := cell(row, col, "SUPERID")
		if superID == "" {
			skipped++
			continue
		}
		pConserved := numCell(row, col, "PCONSERVED")
		pSaved := numCell(row, col, "PSAVED")
		sConserved := numCell(row, col, "SCONSERVED")
		sSaved := numCell(row, col, "SSAVED")
		tConserved := numCell(row, col, "TCONSERVED")
		tSaved := numCell(row, col, "TSAVED")
		qSaved := numCell(row, col, "QSAVED")

		totalSavings := sumFloats(pSaved, sSaved, tSaved, qSaved)
		pMMBtu := scaleFloat(pConserved, kWhToMMBtu)
		totalEnergySaved := sumFloats(pMMBtu, sConserved, tConserved)

		_, err := stmt.ExecContext(ctx,
			superID,
			cell(row, col, "ID"),
			numCell(row, col, "AR_NUMBER"),
			cell(row, col, "APPCODE"),
			cell(row, col, "ARC2"),
			cell(row, col, "IMPSTATUS"),
			numCell(row, col, "IMPCOST"),
			pConserved, pSaved,
			sConserved, sSaved,
			tConserved, numCell(row, col, "TSAVED"),
			numCell(row, col, "QCONSERVED"), qSaved,
			cell(row, col, "REBATE"),
			cell(row, col, "INCREMNTAL"),
			numCell(row, col, "FY"),
			numCell(row, col, "IC_CAPITAL"),
			numCell(row, col, "IC_OTHER"),
			numCell(row, col, "PAYBACK"),
			cell(row, col, "BPTOOL"),
			totalSavings, pMMBtu, totalEnergySaved,
		)
		if err != nil {
			return loaded, skipped, fmt.Errorf("insert recommendation %s: %w", superID, err)
		}
		loaded++
	}
	return loaded, skipped, nil
}

// headerIndex maps trimmed header names to column positions.
func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok {
		return ""
	}
	return workbook.Cell(row, i)
}

// numCell parses a numeric cell, returning nil (SQL NULL) for blanks and
// values that do not parse, mirroring a coercing load.
func numCell(row []string, col map[string]int, name string) *float64 {
	raw := cell(row, col, name)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// sumFloats adds non-nil values, skipping NULLs the way a skipna sum does.
func sumFloats(vals ...*float64) *float64 {
	total := 0.0
	for _, v := range vals {
		if v != nil {
			total += *v
		}
	}
	return &total
}

func scaleFloat(v *float64, factor float64) *float64 {
	if v == nil {
		zero := 0.0
		return &zero
	}
	scaled := *v * factor
	return &scaled
}
