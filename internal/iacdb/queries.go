package iacdb

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"

	"github.com/iacdata/codetree/internal/hierarchy"
)

// AggregateFilter narrows the per-ARC aggregate query.
type AggregateFilter struct {
	Center string
	State  string
	// FiscalYear accepts an optional comparison operator: "=2023", ">=2020",
	// "<=2018", or a bare "2023".
	FiscalYear string
	// ARCPrefix keeps only recommendations whose ARC code starts with it.
	ARCPrefix string
}

var fiscalYearRe = regexp.MustCompile(`^\s*(<=|>=|=)?\s*(\d{4})\s*$`)

// ParseFiscalYear validates a fiscal-year filter expression, returning the
// SQL comparison operator and year.
func ParseFiscalYear(expr string) (op string, year int, err error) {
	m := fiscalYearRe.FindStringSubmatch(expr)
	if m == nil {
		return "", 0, fmt.Errorf("bad fiscal_year %q (expected e.g. =2023, >=2020, <=2018)", expr)
	}
	op = m[1]
	if op == "" {
		op = "="
	}
	year, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("bad fiscal_year %q: %w", expr, err)
	}
	return op, year, nil
}

// ARCAggregate is one row of the per-ARC dashboard aggregate.
type ARCAggregate struct {
	ARC                string  `json:"arc"`
	AverageSavings     float64 `json:"average_savings"`
	AverageCost        float64 `json:"average_cost"`
	AveragePayback     float64 `json:"average_payback"`
	ImplementationRate float64 `json:"implementation_rate"`
	TimesRecommended   int     `json:"times_recommended"`
}

// AggregatesByARC groups recommendations by ARC code and computes the
// dashboard statistics, optionally filtered by center, state, fiscal year
// and ARC prefix. Implementation rate counts implemented against
// implemented-plus-not-implemented, so pending and unknown rows do not
// dilute it.
func (s *Store) AggregatesByARC(ctx context.Context, f AggregateFilter) ([]ARCAggregate, error) {
	where := "WHERE r.arc IS NOT NULL AND r.arc != ''"
	var args []any
	if f.Center != "" {
		where += " AND a.center = ?"
		args = append(args, f.Center)
	}
	if f.State != "" {
		where += " AND a.state = ?"
		args = append(args, f.State)
	}
	if f.FiscalYear != "" {
		op, year, err := ParseFiscalYear(f.FiscalYear)
		if err != nil {
			return nil, err
		}
		where += fmt.Sprintf(" AND r.fiscal_year %s ?", op)
		args = append(args, year)
	}
	if f.ARCPrefix != "" {
		where += " AND r.arc LIKE ?"
		args = append(args, f.ARCPrefix+"%")
	}

	query := fmt.Sprintf(`
		SELECT r.arc,
			COALESCE(AVG(r.total_savings), 0),
			COALESCE(AVG(r.imp_cost), 0),
			COALESCE(AVG(r.payback), 0),
			CASE
				WHEN SUM(CASE WHEN r.imp_status IN ('I', 'N') THEN 1 ELSE 0 END) = 0 THEN 0
				ELSE SUM(CASE WHEN r.imp_status = 'I' THEN 1 ELSE 0 END) * 100.0
					/ SUM(CASE WHEN r.imp_status IN ('I', 'N') THEN 1 ELSE 0 END)
			END,
			COUNT(*)
		FROM recommendations r
		JOIN assessments a ON r.assessment_id = a.id
		%s
		GROUP BY r.arc
		ORDER BY r.arc`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}
	defer rows.Close()

	var out []ARCAggregate
	for rows.Next() {
		var agg ARCAggregate
		if err := rows.Scan(&agg.ARC, &agg.AverageSavings, &agg.AverageCost,
			&agg.AveragePayback, &agg.ImplementationRate, &agg.TimesRecommended); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// FilterOptions lists the distinct filter values present in the data.
type FilterOptions struct {
	Centers []string `json:"centers"`
	States  []string `json:"states"`
	Years   []int    `json:"years"`
}

// FilterOptions returns distinct centers and states ascending and fiscal
// years descending.
func (s *Store) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{}

	if err := s.collectStrings(ctx,
		`SELECT DISTINCT center FROM assessments WHERE center IS NOT NULL AND center != '' ORDER BY center`,
		&opts.Centers); err != nil {
		return nil, err
	}
	if err := s.collectStrings(ctx,
		`SELECT DISTINCT state FROM assessments WHERE state IS NOT NULL AND state != '' ORDER BY state`,
		&opts.States); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT fiscal_year FROM assessments WHERE fiscal_year IS NOT NULL ORDER BY fiscal_year DESC`)
	if err != nil {
		return nil, fmt.Errorf("filter options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		opts.Years = append(opts.Years, y)
	}
	return opts, rows.Err()
}

func (s *Store) collectStrings(ctx context.Context, query string, dest *[]string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("filter options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("scan option: %w", err)
		}
		*dest = append(*dest, v)
	}
	return rows.Err()
}

// PayloadRow is one recommendation joined with its assessment, the shape the
// full-export endpoint serves after taxonomy descriptions are resolved.
type PayloadRow struct {
	ARC             string   `json:"number_arc"`
	NAICS           string   `json:"number_naics"`
	Products        string   `json:"product_naics"`
	Center          string   `json:"center"`
	State           string   `json:"state"`
	FiscalYear      *int     `json:"fiscal_year"`
	Implemented     bool     `json:"implemented"`
	Cost            *float64 `json:"cost"`
	TotalSavings    *float64 `json:"total_savings"`
	PConservedMMBtu *float64 `json:"p_conserved_mmbtu"`
	EnergySavings   *float64 `json:"energy_savings"`
}

// PayloadRows returns every recommendation joined with its assessment.
func (s *Store) PayloadRows(ctx context.Context, limit int) ([]PayloadRow, error) {
	query := `
		SELECT r.arc, a.naics, a.products, a.center, a.state, r.fiscal_year,
			r.imp_status, r.imp_cost, r.total_savings, r.p_conserved_mmbtu,
			r.total_energy_saved
		FROM recommendations r
		JOIN assessments a ON r.assessment_id = a.id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("payload query: %w", err)
	}
	defer rows.Close()

	var out []PayloadRow
	for rows.Next() {
		var (
			row       PayloadRow
			arc       sql.NullString
			naics     sql.NullString
			products  sql.NullString
			center    sql.NullString
			state     sql.NullString
			impStatus sql.NullString
		)
		if err := rows.Scan(&arc, &naics, &products, &center, &state,
			&row.FiscalYear, &impStatus, &row.Cost, &row.TotalSavings,
			&row.PConservedMMBtu, &row.EnergySavings); err != nil {
			return nil, fmt.Errorf("scan payload row: %w", err)
		}
		row.ARC = arc.String
		row.NAICS = naics.String
		row.Products = products.String
		row.Center = center.String
		row.State = state.String
		row.Implemented = impStatus.String == "I"
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopRecommendation aggregates every occurrence of one ARC code.
type TopRecommendation struct {
	ARCCode            string  `json:"arc_code"`
	Description        string  `json:"description"`
	AverageSavings     float64 `json:"average_savings"`
	AverageCost        float64 `json:"average_cost"`
	AveragePayback     float64 `json:"average_payback"`
	ImplementationRate float64 `json:"implementation_rate"`
	TimesRecommended   int     `json:"times_recommended"`
}

// TopRecommendations aggregates recommendations per ARC code, restricted to
// the codes present in the given flattened subtree and optionally to a set of
// fiscal years. Codes in the database but outside the subtree are skipped,
// treated as zero-value rather than an error.
func (s *Store) TopRecommendations(ctx context.Context, codes hierarchy.CodeMap, fiscalYears []int) (map[string]TopRecommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT arc, fiscal_year, total_savings, payback, imp_cost, imp_status
		FROM recommendations
		WHERE arc IS NOT NULL AND arc != ''`)
	if err != nil {
		return nil, fmt.Errorf("recommendations query: %w", err)
	}
	defer rows.Close()

	years := make(map[int]bool, len(fiscalYears))
	for _, y := range fiscalYears {
		years[y] = true
	}

	type acc struct {
		savings, payback, cost float64
		implemented, count     int
	}
	accs := make(map[string]*acc)

	for rows.Next() {
		var (
			arc                    string
			fy                     sql.NullInt64
			savings, payback, cost sql.NullFloat64
			status                 sql.NullString
		)
		if err := rows.Scan(&arc, &fy, &savings, &payback, &cost, &status); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if _, ok := codes[arc]; !ok {
			continue
		}
		if len(years) > 0 && (!fy.Valid || !years[int(fy.Int64)]) {
			continue
		}
		a := accs[arc]
		if a == nil {
			a = &acc{}
			accs[arc] = a
		}
		a.savings += savings.Float64
		a.payback += payback.Float64
		a.cost += cost.Float64
		if status.String == "I" {
			a.implemented++
		}
		a.count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]TopRecommendation, len(accs))
	for arc, a := range accs {
		n := float64(a.count)
		rate := float64(a.implemented) / n * 100
		out[arc] = TopRecommendation{
			ARCCode:            arc,
			Description:        codes[arc],
			AverageSavings:     a.savings / n,
			AverageCost:        a.cost / n,
			AveragePayback:     a.payback / n,
			ImplementationRate: roundTo(rate, 1),
			TimesRecommended:   a.count,
		}
	}
	return out, nil
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
