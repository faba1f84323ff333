package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// ReplaceTokens overwrites the token set of a system. Insertion order is kept.
func (s *Store) ReplaceTokens(ctx context.Context, systemID string, tokens *token.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.touch(ctx, tx, systemID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE system_id = ?`, systemID); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tokens (system_id, path, position, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tokens.Tokens() {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode token %s: %w", t.Path, err)
		}
		if _, err := stmt.ExecContext(ctx, systemID, string(t.Path), i, string(data)); err != nil {
			return fmt.Errorf("failed to insert token %s: %w", t.Path, err)
		}
	}
	return tx.Commit()
}

// Tokens loads the token set of a system in stored order.
func (s *Store) Tokens(ctx context.Context, systemID string) (*token.Set, error) {
	if _, err := s.System(ctx, systemID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM tokens WHERE system_id = ? ORDER BY position`, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	set, _ := token.NewSet()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		var t token.Token
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("failed to decode token: %w", err)
		}
		if err := set.Add(t); err != nil {
			return nil, err
		}
	}
	return set, rows.Err()
}

// SaveTheme inserts or replaces the override layer of a theme. A missing id
// is generated; SystemID must name an existing system.
func (s *Store) SaveTheme(ctx context.Context, o *theme.Override) error {
	if o.ThemeID == "" {
		return fmt.Errorf("theme id is required")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode theme %s: %w", o.ThemeID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.touch(ctx, tx, o.SystemID); err != nil {
		return err
	}
	// An existing theme keeps its id.
	err = tx.QueryRowContext(ctx,
		`INSERT INTO themes (id, system_id, theme_id, mode, data, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (system_id, theme_id) DO UPDATE SET mode = excluded.mode, data = excluded.data, updated_at = excluded.updated_at
		RETURNING id`,
		o.ID, o.SystemID, o.ThemeID, string(o.Mode), string(data), s.now().Unix(),
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to save theme %s: %w", o.ThemeID, err)
	}
	return tx.Commit()
}

// Themes lists the override layers of a system by theme id.
func (s *Store) Themes(ctx context.Context, systemID string) ([]*theme.Override, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM themes WHERE system_id = ? ORDER BY theme_id`, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query themes: %w", err)
	}
	defer rows.Close()

	var out []*theme.Override
	for rows.Next() {
		o, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Theme loads one override layer.
func (s *Store) Theme(ctx context.Context, systemID, themeID string) (*theme.Override, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data FROM themes WHERE system_id = ? AND theme_id = ?`, systemID, themeID)
	o, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme %q: %w", themeID, ErrNotFound)
	}
	return o, err
}

func scanTheme(scanner interface{ Scan(...any) error }) (*theme.Override, error) {
	var id, data string
	if err := scanner.Scan(&id, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan theme: %w", err)
	}
	o, err := theme.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode theme: %w", err)
	}
	o.ID = id
	return o, nil
}

// DeleteTheme removes one override layer.
func (s *Store) DeleteTheme(ctx context.Context, systemID, themeID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM themes WHERE system_id = ? AND theme_id = ?`, systemID, themeID)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return expectRow(res, "theme", themeID)
}

// SaveTemplate overwrites a template, or inserts it under a new id.
func (s *Store) SaveTemplate(ctx context.Context, systemID string, c *export.CustomTemplate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.touch(ctx, tx, systemID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO templates (id, system_id, name, template, extension, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, template = excluded.template,
			extension = excluded.extension, updated_at = excluded.updated_at`,
		c.ID, systemID, c.Name, c.Template, c.Extension, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", c.Name, err)
	}
	return tx.Commit()
}

const templateColumns = `id, name, template, extension`

// Templates lists the templates of a system by name.
func (s *Store) Templates(ctx context.Context, systemID string) ([]export.CustomTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE system_id = ? ORDER BY name, id`, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var out []export.CustomTemplate
	for rows.Next() {
		var c export.CustomTemplate
		if err := rows.Scan(&c.ID, &c.Name, &c.Template, &c.Extension); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Template loads a template by id.
func (s *Store) Template(ctx context.Context, systemID, id string) (export.CustomTemplate, error) {
	var c export.CustomTemplate
	err := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE system_id = ? AND id = ?`, systemID, id,
	).Scan(&c.ID, &c.Name, &c.Template, &c.Extension)
	if errors.Is(err, sql.ErrNoRows) {
		return export.CustomTemplate{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return export.CustomTemplate{}, fmt.Errorf("failed to find template: %w", err)
	}
	return c, nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, systemID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE system_id = ? AND id = ?`, systemID, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return expectRow(res, "template", id)
}
