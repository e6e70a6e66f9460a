package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"brandforge/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Store manages work-unit persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// AddUnit inserts a new active work unit awaiting pipeline processing.
func (s *Store) AddUnit(ctx context.Context, unitID, name, brief, ownerAddress string) (*Unit, error) {
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		return nil, errors.New("unit id is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO work_units (unit_id, name, brief, owner_address, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		unitID,
		nullableString(name),
		nullableString(brief),
		nullableString(ownerAddress),
		UnitActive,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert work unit: %w", err)
	}

	return s.GetUnit(ctx, unitID)
}

// GetUnit fetches a work unit by its external identifier.
func (s *Store) GetUnit(ctx context.Context, unitID string) (*Unit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM work_units WHERE unit_id = ?`, unitID)
	unit, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work unit: %w", err)
	}
	return unit, nil
}

// OldestActiveUnit returns the earliest-created unit still awaiting a pipeline
// run, or nil when there is no pending work.
func (s *Store) OldestActiveUnit(ctx context.Context) (*Unit, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+unitColumns+` FROM work_units WHERE status = ? ORDER BY created_at LIMIT 1`,
		UnitActive,
	)
	unit, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("oldest active unit: %w", err)
	}
	return unit, nil
}

// CompleteUnit records the finished pipeline summary against a unit and marks
// it completed. It fails when the unit is unknown so summaries are never lost
// silently.
func (s *Store) CompleteUnit(ctx context.Context, unitID string, summary Summary) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE work_units SET status = ?, completed_at = ?, summary_json = ? WHERE unit_id = ?`,
		UnitCompleted,
		now,
		string(encoded),
		unitID,
	)
	if err != nil {
		return fmt.Errorf("complete work unit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("complete work unit: unknown unit %q", unitID)
	}
	return nil
}

// List returns units filtered by status (or all units when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...UnitStatus) ([]*Unit, error) {
	baseQuery := `SELECT ` + unitColumns + ` FROM work_units`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list work units: %w", err)
	}
	defer rows.Close()

	var units []*Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// Stats returns unit counts grouped by lifecycle state.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM work_units GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{}
	for rows.Next() {
		var status UnitStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch status {
		case UnitActive:
			stats.Active += count
		case UnitCompleted:
			stats.Completed += count
		}
	}
	return stats, rows.Err()
}

// Remove deletes a unit by external identifier.
func (s *Store) Remove(ctx context.Context, unitID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_units WHERE unit_id = ?`, unitID)
	if err != nil {
		return false, fmt.Errorf("delete work unit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const unitColumns = "id, unit_id, name, brief, owner_address, status, created_at, completed_at, summary_json"

func scanUnit(scanner interface{ Scan(dest ...any) error }) (*Unit, error) {
	var (
		id           int64
		unitID       string
		name         sql.NullString
		brief        sql.NullString
		ownerAddress sql.NullString
		statusStr    string
		createdRaw   sql.NullString
		completedRaw sql.NullString
		summary      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&unitID,
		&name,
		&brief,
		&ownerAddress,
		&statusStr,
		&createdRaw,
		&completedRaw,
		&summary,
	); err != nil {
		return nil, err
	}

	unit := &Unit{
		ID:           id,
		UnitID:       unitID,
		Name:         name.String,
		Brief:        brief.String,
		OwnerAddress: ownerAddress.String,
		Status:       UnitStatus(statusStr),
		SummaryJSON:  summary.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		unit.CreatedAt = created
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			unit.CompletedAt = &completed
		}
	}
	return unit, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
