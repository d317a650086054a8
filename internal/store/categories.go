package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/centavo-dev/centavo/internal/model"
)

// CreateCategory inserts a category. Names are unique per flow type.
func (s *Store) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if c.Name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !model.ValidFlowType(c.Type) {
		return model.Category{}, fmt.Errorf("%w: unknown category type %q", ErrValidation, c.Type)
	}
	if c.Color == "" {
		c.Color = "#6B7280"
	}
	if c.Icon == "" {
		c.Icon = "💰"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, color, icon) VALUES (?, ?, ?, ?)`,
		c.Name, string(c.Type), c.Color, c.Icon,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return model.Category{}, fmt.Errorf("%w: category %q (%s) already exists", ErrValidation, c.Name, c.Type)
		}
		return model.Category{}, fmt.Errorf("inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, fmt.Errorf("reading category id: %w", err)
	}
	return s.GetCategory(ctx, id)
}

// GetCategory returns a category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, icon, created_at FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// ListCategories returns categories ordered by type then name. A non-empty
// flowType narrows to that type.
func (s *Store) ListCategories(ctx context.Context, flowType model.FlowType) ([]model.Category, error) {
	query := `SELECT id, name, type, color, icon, created_at FROM categories`
	var args []any
	if flowType != "" {
		if !model.ValidFlowType(flowType) {
			return nil, fmt.Errorf("%w: unknown category type %q", ErrValidation, flowType)
		}
		query += ` WHERE type = ?`
		args = append(args, string(flowType))
	}
	query += ` ORDER BY type, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		c         model.Category
		flowType  string
		createdAt string
	)
	err := row.Scan(&c.ID, &c.Name, &flowType, &c.Color, &c.Icon, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("%w: category", ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("scanning category: %w", err)
	}
	c.Type = model.FlowType(flowType)
	c.CreatedAt = parseTimestamp(createdAt)
	return c, nil
}

// checkCategoryRef verifies that a category exists and that its type
// matches the referencing transaction's type. A nil id is always valid.
func checkCategoryRef(ctx context.Context, tx *sql.Tx, categoryID *int64, flowType model.FlowType) error {
	if categoryID == nil {
		return nil
	}
	var catType string
	err := tx.QueryRowContext(ctx, `SELECT type FROM categories WHERE id = ?`, *categoryID).Scan(&catType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d", ErrNotFound, *categoryID)
	}
	if err != nil {
		return fmt.Errorf("checking category %d: %w", *categoryID, err)
	}
	if model.FlowType(catType) != flowType {
		return fmt.Errorf("%w: category %d is %s, transaction is %s", ErrInvalidReference, *categoryID, catType, flowType)
	}
	return nil
}
