// Package store handles SQLite persistence of imported datasets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/mealboard/internal/dataset"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Lookup errors.
var (
	ErrNotFound = errors.New("dataset not found")
	ErrExists   = errors.New("dataset already exists")
)

// Store wraps SQLite access for imported datasets.
type Store struct {
	db *sql.DB
}

// DatasetInfo describes one imported dataset.
type DatasetInfo struct {
	ID         int64
	Name       string
	Source     string
	ImportedAt time.Time
	Columns    []string
	Rows       int
	Dropped    int
	Clipped    int
}

// DietCount is the number of stored meals for one diet.
type DietCount struct {
	Diet  string
	Meals int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			columns TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			clipped INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meals (
			dataset_id INTEGER NOT NULL REFERENCES datasets(id),
			row_idx INTEGER NOT NULL,
			diet_type TEXT NOT NULL,
			calories REAL NOT NULL,
			protein REAL NOT NULL,
			fat REAL NOT NULL,
			carbs REAL NOT NULL,
			prep_time REAL NOT NULL,
			num_ingredients INTEGER NOT NULL,
			is_healthy INTEGER NOT NULL,
			vegan INTEGER NOT NULL,
			PRIMARY KEY (dataset_id, row_idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_meals_diet ON meals(dataset_id, diet_type);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ImportDataset stores the base columns of ds under name. An existing dataset with the
// same name is replaced only when replace is set; otherwise ErrExists is returned.
func (s *Store) ImportDataset(ctx context.Context, name string, ds *dataset.Dataset, replace bool) (id int64, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("dataset name is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var existing int64
	switch err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE name = ?`, name).Scan(&existing); {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return 0, err
	case !replace:
		err = fmt.Errorf("%w: %s", ErrExists, name)
		return 0, err
	default:
		if _, err = tx.ExecContext(ctx, `DELETE FROM meals WHERE dataset_id = ?`, existing); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, existing); err != nil {
			return 0, err
		}
	}

	var columns []string
	for _, col := range ds.Columns() {
		if isBase(col) {
			columns = append(columns, col)
		}
	}
	summary := ds.Summary()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, source, imported_at, columns, row_count, dropped, clipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name,
		summary.Source,
		time.Now().UTC().Format(time.RFC3339Nano),
		strings.Join(columns, ","),
		ds.Len(),
		summary.Dropped,
		summary.Clipped,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO meals (dataset_id, row_idx, diet_type, calories, protein, fat, carbs, prep_time, num_ingredients, is_healthy, vegan)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		if _, err = stmt.ExecContext(ctx, id, i, r.DietType, r.Calories, r.Protein, r.Fat, r.Carbs,
			r.PrepTime, r.NumIngredients, r.IsHealthy, r.Vegan); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func isBase(col string) bool {
	for _, base := range dataset.BaseColumns {
		if col == base {
			return true
		}
	}
	return false
}

// LoadDataset rebuilds a stored dataset in its original row order.
func (s *Store) LoadDataset(ctx context.Context, name string) (*dataset.Dataset, DatasetInfo, error) {
	info, err := s.datasetInfo(ctx, name)
	if err != nil {
		return nil, DatasetInfo{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT diet_type, calories, protein, fat, carbs, prep_time, num_ingredients, is_healthy, vegan
		 FROM meals WHERE dataset_id = ? ORDER BY row_idx ASC`, info.ID)
	if err != nil {
		return nil, DatasetInfo{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	records := make([]dataset.MealRecord, 0, info.Rows)
	for rows.Next() {
		var r dataset.MealRecord
		if err := rows.Scan(&r.DietType, &r.Calories, &r.Protein, &r.Fat, &r.Carbs, &r.PrepTime,
			&r.NumIngredients, &r.IsHealthy, &r.Vegan); err != nil {
			return nil, DatasetInfo{}, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, DatasetInfo{}, err
	}

	ds, err := dataset.New(records, info.Columns)
	if err != nil {
		return nil, DatasetInfo{}, fmt.Errorf("stored dataset %s: %w", name, err)
	}
	ds.SetSummary(dataset.Summary{
		Source:  "sqlite:" + info.Name,
		Read:    info.Rows + info.Dropped,
		Kept:    info.Rows,
		Dropped: info.Dropped,
		Clipped: info.Clipped,
	})
	return ds, info, nil
}

func (s *Store) datasetInfo(ctx context.Context, name string) (DatasetInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, imported_at, columns, row_count, dropped, clipped
		 FROM datasets WHERE name = ?`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DatasetInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (DatasetInfo, error) {
	var info DatasetInfo
	var importedAt, columns string
	if err := row.Scan(&info.ID, &info.Name, &info.Source, &importedAt, &columns, &info.Rows, &info.Dropped, &info.Clipped); err != nil {
		return DatasetInfo{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return DatasetInfo{}, err
	}
	info.ImportedAt = parsed
	if columns != "" {
		info.Columns = strings.Split(columns, ",")
	}
	return info, nil
}

// ListDatasets returns every imported dataset, newest first.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, imported_at, columns, row_count, dropped, clipped
		 FROM datasets ORDER BY imported_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []DatasetInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDiets counts stored meals per diet of one dataset, most frequent first.
func (s *Store) ListDiets(ctx context.Context, name string) ([]DietCount, error) {
	info, err := s.datasetInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT diet_type, COUNT(*) AS meals, MIN(row_idx) AS first_row
		 FROM meals WHERE dataset_id = ?
		 GROUP BY diet_type
		 ORDER BY meals DESC, first_row ASC`, info.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []DietCount
	for rows.Next() {
		var dc DietCount
		var firstRow int
		if err := rows.Scan(&dc.Diet, &dc.Meals, &firstRow); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteDataset removes a dataset and its meals.
func (s *Store) DeleteDataset(ctx context.Context, name string) (err error) {
	info, err := s.datasetInfo(ctx, name)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM meals WHERE dataset_id = ?`, info.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, info.ID); err != nil {
		return err
	}
	return tx.Commit()
}
