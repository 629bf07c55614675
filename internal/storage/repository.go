package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvdash/dashboard/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store closed")
)

// ReplaceTable swaps the complete row set of one table inside a single
// transaction and bumps its version. Readers see either the old or the new set.
func (r *Repository) ReplaceTable(ctx context.Context, name model.TableName, rows []model.Row, at time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM view_rows WHERE table_name = ?`, string(name)); err != nil {
		return 0, fmt.Errorf("clear rows of %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO view_rows (table_name, position, cells_json, placeholder, colspan)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(
			ctx,
			string(name),
			i,
			EncodeCellsJSON(row.Cells),
			row.Placeholder,
			row.Colspan,
		); err != nil {
			return 0, fmt.Errorf("insert row %d of %s: %w", i, name, err)
		}
	}

	var version int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO view_tables (name, version, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			version=view_tables.version + 1,
			updated_at=excluded.updated_at
		RETURNING version`,
		string(name),
		at.UTC().Format(time.RFC3339Nano),
	).Scan(&version); err != nil {
		return 0, fmt.Errorf("bump version of %s: %w", name, err)
	}
	return version, tx.Commit()
}

// LoadTable reads one table's rows and metadata in a single transaction.
func (r *Repository) LoadTable(ctx context.Context, name model.TableName) (model.TableState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.TableState{}, err
	}
	defer tx.Rollback()

	state, err := loadTable(ctx, tx, name)
	if err != nil {
		return model.TableState{}, err
	}
	return state, tx.Commit()
}

// LoadTables reads several tables under one transaction so the result is a
// consistent cut across tables. Tables that were never written are skipped.
func (r *Repository) LoadTables(ctx context.Context, names []model.TableName) (map[model.TableName]model.TableState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result := make(map[model.TableName]model.TableState, len(names))
	for _, name := range names {
		state, err := loadTable(ctx, tx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[name] = state
	}
	return result, tx.Commit()
}

func loadTable(ctx context.Context, tx *sql.Tx, name model.TableName) (model.TableState, error) {
	state := model.TableState{Name: name}
	var updatedAt string
	err := tx.QueryRowContext(ctx, `SELECT version, updated_at FROM view_tables WHERE name = ?`, string(name)).
		Scan(&state.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TableState{}, ErrNotFound
	}
	if err != nil {
		return model.TableState{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		state.UpdatedAt = ts.UTC()
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT cells_json, placeholder, colspan
		FROM view_rows
		WHERE table_name = ?
		ORDER BY position`, string(name))
	if err != nil {
		return model.TableState{}, err
	}
	defer rows.Close()

	state.Rows = []model.Row{}
	for rows.Next() {
		var (
			row       model.Row
			cellsJSON string
		)
		if err := rows.Scan(&cellsJSON, &row.Placeholder, &row.Colspan); err != nil {
			return model.TableState{}, err
		}
		row.Cells = ParseCellsJSON(cellsJSON)
		state.Rows = append(state.Rows, row)
	}
	return state, rows.Err()
}

func EncodeCellsJSON(cells []model.Cell) string {
	if len(cells) == 0 {
		return "[]"
	}
	body, err := json.Marshal(cells)
	if err != nil {
		return "[]"
	}
	return string(body)
}

func ParseCellsJSON(v string) []model.Cell {
	if v == "" {
		return []model.Cell{}
	}
	var out []model.Cell
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return []model.Cell{}
	}
	return out
}
