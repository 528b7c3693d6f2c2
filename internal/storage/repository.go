package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"costtracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the SQLite-backed record store. It owns identifier
// generation and timestamping; costs are stored as exact decimal strings.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, fields core.ExpenseFields) (core.Expense, error) {
	now := time.Now().UTC()
	date := fields.Date
	if date.IsZero() {
		date = now
	}
	e := core.Expense{
		ID:          uuid.NewString(),
		ServiceName: fields.ServiceName,
		Client:      fields.Client,
		Cost:        core.RoundCost(fields.Cost),
		Date:        date,
		Description: fields.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, service_name, client, cost, date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ServiceName, e.Client, e.Cost.String(),
		e.Date.Format(time.RFC3339Nano), e.Description,
		e.CreatedAt.Format(time.RFC3339Nano), e.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return core.Expense{}, &core.StoreError{Op: "create", Err: err}
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"service_name", e.ServiceName,
		"client", e.Client,
		"cost", e.Cost.String())

	return e, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, service_name, client, cost, date, description, created_at, updated_at
		FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StoreError{Op: "get", Err: err}
	}
	return &e, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, update core.ExpenseUpdate) (core.Expense, error) {
	// Build the SET clause from the supplied fields only, the way the
	// store's native partial-update expression would.
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}

	if update.ServiceName != nil {
		sets = append(sets, "service_name = ?")
		args = append(args, *update.ServiceName)
	}
	if update.Client != nil {
		sets = append(sets, "client = ?")
		args = append(args, *update.Client)
	}
	if update.Cost != nil {
		sets = append(sets, "cost = ?")
		args = append(args, core.RoundCost(*update.Cost).String())
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return core.Expense{}, &core.StoreError{Op: "update", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Expense{}, core.ErrNotFound
	}

	updated, err := r.Get(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if updated == nil {
		return core.Expense{}, core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense updated", "id", id)
	return *updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	// Idempotent: deleting an absent id is not an error.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return &core.StoreError{Op: "delete", Err: err}
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, service_name, client, cost, date, description, created_at, updated_at
		FROM expenses LIMIT ?`, limit)
	if err != nil {
		return nil, &core.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "list", Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list", Err: err}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                            core.Expense
		cost, date, created, updated string
	)
	if err := row.Scan(&e.ID, &e.ServiceName, &e.Client, &cost, &date, &e.Description, &created, &updated); err != nil {
		return core.Expense{}, err
	}

	var err error
	if e.Cost, err = core.ParseCost(cost); err != nil {
		return core.Expense{}, fmt.Errorf("parse cost %q: %w", cost, err)
	}
	if e.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return core.Expense{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return core.Expense{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return e, nil
}
