package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// System is a named design system.
type System struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const systemColumns = `id, name, description, created_at, updated_at`

func scanSystem(scanner interface{ Scan(...any) error }) (System, error) {
	var (
		sys              System
		created, updated int64
	)
	if err := scanner.Scan(&sys.ID, &sys.Name, &sys.Description, &created, &updated); err != nil {
		return System{}, err
	}
	sys.CreatedAt = time.Unix(created, 0).UTC()
	sys.UpdatedAt = time.Unix(updated, 0).UTC()
	return sys, nil
}

// CreateSystem inserts a new system with a generated id.
func (s *Store) CreateSystem(ctx context.Context, name, description string) (System, error) {
	if name == "" {
		return System{}, fmt.Errorf("system name is required")
	}
	now := s.now().UTC().Truncate(time.Second)
	sys := System{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO systems (`+systemColumns+`) VALUES (?, ?, ?, ?, ?)`,
		sys.ID, sys.Name, sys.Description, now.Unix(), now.Unix(),
	)
	if err != nil {
		return System{}, fmt.Errorf("failed to insert system: %w", err)
	}
	return sys, nil
}

// System finds a system by id or, failing that, by name.
func (s *Store) System(ctx context.Context, idOrName string) (System, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+systemColumns+` FROM systems WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1`,
		idOrName, idOrName, idOrName,
	)
	sys, err := scanSystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return System{}, fmt.Errorf("system %q: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return System{}, fmt.Errorf("failed to find system: %w", err)
	}
	return sys, nil
}

// Systems lists every system by name.
func (s *Store) Systems(ctx context.Context) ([]System, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+systemColumns+` FROM systems ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	defer rows.Close()

	var out []System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		out = append(out, sys)
	}
	return out, rows.Err()
}

// DeleteSystem removes a system with its tokens, themes and templates.
func (s *Store) DeleteSystem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM systems WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete system: %w", err)
	}
	return expectRow(res, "system", id)
}

func (s *Store) touch(ctx context.Context, tx *sql.Tx, systemID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE systems SET updated_at = ? WHERE id = ?`, s.now().Unix(), systemID)
	if err != nil {
		return fmt.Errorf("failed to update system: %w", err)
	}
	return expectRow(res, "system", systemID)
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
