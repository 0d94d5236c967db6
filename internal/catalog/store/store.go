package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkruczek/faktura/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context, page catalog.Page) (*catalog.CategoryPage, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}

	query := `
		SELECT id, name, shortname
		FROM categories
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, page.Size, (page.Number-1)*page.Size)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []catalog.Category

	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Shortname); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	lastPage := (count + page.Size - 1) / page.Size
	if lastPage < 1 {
		lastPage = 1
	}

	return &catalog.CategoryPage{
		Results:  categories,
		CurrPage: page.Number,
		LastPage: lastPage,
		Count:    count,
	}, nil
}

func (s *Store) ListBranches(ctx context.Context) ([]catalog.Branch, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, shortname FROM branches ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []catalog.Branch

	for rows.Next() {
		var b catalog.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Shortname); err != nil {
			return nil, fmt.Errorf("scanning branch: %w", err)
		}

		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating branch rows: %w", err)
	}

	return branches, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]catalog.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, default_branch FROM users ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []catalog.User

	for rows.Next() {
		var u catalog.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.DefaultBranch); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}
