// Package iacdb loads the IAC assessment and recommendation tables into
// SQLite and answers the aggregate queries the dashboard endpoints serve.
// The store is write-once per build, read-many afterward.
package iacdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding assessment and recommendation data.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the schema and the resource-code reference table.
func (s *Store) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id VARCHAR(20) PRIMARY KEY,
	center VARCHAR(10),
	fiscal_year INT,
	sic VARCHAR(10),
	naics VARCHAR(20),
	state VARCHAR(2),
	sales DECIMAL(20,2),
	employees INT,
	plant_area DECIMAL(20,2),
	products TEXT,
	num_recommendations INT,
	electricity_cost DECIMAL(20,2),
	electricity_usage DECIMAL(20,2),
	natural_gas_cost DECIMAL(20,2),
	natural_gas_usage DECIMAL(20,2),
	other_energy_cost DECIMAL(20,2),
	other_energy_usage DECIMAL(20,2),
	total_energy_cost DECIMAL(20,2),
	total_energy_usage DECIMAL(20,2)
);

CREATE TABLE IF NOT EXISTS recommendations (
	super_id VARCHAR(30) PRIMARY KEY,
	assessment_id VARCHAR(20),
	rec_number INT,
	app_code VARCHAR(10),
	arc VARCHAR(20),
	imp_status VARCHAR(1),
	imp_cost DECIMAL(20,2),
	p_conserved DECIMAL(20,2),
	p_saved DECIMAL(20,2),
	s_conserved DECIMAL(20,2),
	s_saved DECIMAL(20,2),
	t_conserved DECIMAL(20,2),
	t_saved DECIMAL(20,2),
	q_conserved DECIMAL(20,2),
	q_saved DECIMAL(20,2),
	rebate VARCHAR(1),
	incremental VARCHAR(1),
	fiscal_year INT,
	ic_capital DECIMAL(20,2),
	ic_other DECIMAL(20,2),
	payback DECIMAL(10,2),
	bp_tool VARCHAR(50),
	total_savings DECIMAL(20,2),
	p_conserved_mmbtu DECIMAL(20,2),
	total_energy_saved DECIMAL(20,2),
	FOREIGN KEY (assessment_id) REFERENCES assessments(id)
);

CREATE TABLE IF NOT EXISTS resource_codes (
	code VARCHAR(10) PRIMARY KEY,
	description VARCHAR(100),
	unit VARCHAR(20),
	energy_type VARCHAR(30),
	conversion_factor DECIMAL(20,6)
);

CREATE INDEX IF NOT EXISTS idx_recommendations_arc ON recommendations(arc);
CREATE INDEX IF NOT EXISTS idx_recommendations_assessment ON recommendations(assessment_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return s.seedResourceCodes(ctx)
}

// resourceCodes mirrors the IAC database manual's energy resource table.
var resourceCodes = []struct {
	Code        string
	Description string
	Unit        string
	EnergyType  string
	Conversion  float64
}{
	{"1", "Electricity", "kWh", "Electricity", 0.003412},
	{"2", "Natural Gas", "MCF", "Natural Gas", 1.026},
	{"3", "Liquefied Petroleum Gas", "gal", "LPG", 0.091},
	{"4", "#1 Fuel Oil", "gal", "Fuel Oil", 0.139},
	{"5", "#2 Fuel Oil", "gal", "Fuel Oil", 0.139},
	{"6", "#4 Fuel Oil", "gal", "Fuel Oil", 0.146},
	{"7", "#6 Fuel Oil", "gal", "Fuel Oil", 0.15},
	{"8", "Coal", "ton", "Coal", 24.93},
	{"9", "Wood", "ton", "Biomass", 17.2},
	{"10", "Paper", "ton", "Biomass", 15.6},
	{"11", "Other Gas", "MCF", "Gas", 1.0},
	{"12", "Other Energy", "MMBtu", "Other", 1.0},
	{"13", "Demand", "kW", "Electricity", 0.0},
	{"21", "Water", "kGal", "Water", 0.0},
}

func (s *Store) seedResourceCodes(ctx context.Context) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO resource_codes (code, description, unit, energy_type, conversion_factor)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare resource codes: %w", err)
	}
	defer stmt.Close()
	for _, rc := range resourceCodes {
		if _, err := stmt.ExecContext(ctx, rc.Code, rc.Description, rc.Unit, rc.EnergyType, rc.Conversion); err != nil {
			return fmt.Errorf("insert resource code %s: %w", rc.Code, err)
		}
	}
	return nil
}
