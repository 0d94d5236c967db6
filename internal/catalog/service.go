package catalog

import (
	"context"
)

type Repository interface {
	ListCategories(ctx context.Context, page Page) (*CategoryPage, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Page is a pagination request for category listings.
type Page struct {
	Number int
	Size   int
}

const defaultPageSize = 30

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}

	if p.Size < 1 {
		p.Size = defaultPageSize
	}

	return p
}

// CategoryPage is one page of categories plus pagination metadata.
type CategoryPage struct {
	Results  []Category
	CurrPage int
	LastPage int
	Count    int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Categories(ctx context.Context, page Page) (*CategoryPage, error) {
	return s.repo.ListCategories(ctx, page.Normalize())
}

func (s *Service) Branches(ctx context.Context) ([]Branch, error) {
	return s.repo.ListBranches(ctx)
}

func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}
