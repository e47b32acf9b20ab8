package services

import (
	"context"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
)

type CartService struct {
	Prods *repos.ProductRepo
}

func NewCartService(prods *repos.ProductRepo) *CartService {
	return &CartService{Prods: prods}
}

// Add puts qty units of productID into cart. Unknown products return domain.ErrNotFound
// and leave the cart untouched.
func (s *CartService) Add(ctx context.Context, cart *domain.Cart, productID int64, qty int) error {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return err
	}
	cart.Add(p.ID, qty)
	return nil
}

// View prices the cart with the current catalog. Lines whose product is gone are skipped.
func (s *CartService) View(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	view := domain.CartView{Items: []domain.CartItem{}}
	if cart.Empty() {
		return view, nil
	}
	products, err := s.Prods.ByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return domain.CartView{}, err
	}
	for _, l := range cart.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		sub := p.Price * int64(l.Quantity)
		view.Items = append(view.Items, domain.CartItem{Product: p, Quantity: l.Quantity, Subtotal: sub})
		view.Total += sub
	}
	return view, nil
}
