package services

import (
	"context"
	"strings"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
)

// AllCategories is the pseudo category used by /tienda.
const AllCategories = "todos"

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) Store(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" || category == AllCategories {
		return s.Prods.All(ctx)
	}
	return s.Prods.ByCategory(ctx, category)
}

func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.Latest(ctx, 12)
}

func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	return s.Prods.Search(ctx, strings.TrimSpace(q))
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, p domain.Product) (int64, error) {
	return s.Prods.Create(ctx, p)
}

func (s *CatalogService) Update(ctx context.Context, p domain.Product) error {
	return s.Prods.Update(ctx, p)
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.Prods.Delete(ctx, id)
}

// ForSale lists products for the procesos form.
func (s *CatalogService) ForSale(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.ByName(ctx)
}
