package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
)

// PricedLine is a validated cart line with the price that will be charged.
type PricedLine struct {
	Product  domain.Product
	Quantity int
}

type CheckoutService struct {
	Prods *repos.ProductRepo
	Tx    *repos.TxRunner

	// Folio and Now are replaceable in tests.
	Folio func() string
	Now   func() time.Time
}

func NewCheckoutService(prods *repos.ProductRepo, tx *repos.TxRunner) *CheckoutService {
	return &CheckoutService{Prods: prods, Tx: tx, Folio: NewFolio, Now: time.Now}
}

// NewFolio returns an 8 character uppercase code. Uniqueness is left to the ventas.folio constraint.
func NewFolio() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Validate re-reads every line and fails on the first one that is missing or short of stock.
// It takes no locks: stock can change before Commit runs.
func (s *CheckoutService) Validate(ctx context.Context, cart domain.Cart) ([]PricedLine, error) {
	products, err := s.Prods.ByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	lines := make([]PricedLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, &domain.StockError{ProductID: l.ProductID, Requested: l.Quantity}
		}
		if p.Stock < l.Quantity {
			return nil, &domain.StockError{ProductID: p.ID, Name: p.Name, Requested: l.Quantity, Available: p.Stock}
		}
		lines = append(lines, PricedLine{Product: p, Quantity: l.Quantity})
	}
	return lines, nil
}

// Commit decrements stock and appends one sale per line inside a single transaction.
func (s *CheckoutService) Commit(ctx context.Context, lines []PricedLine) ([]domain.Sale, error) {
	fecha := s.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	var sales []domain.Sale
	err := s.Tx.Run(ctx, func(products *repos.ProductRepo, ledger *repos.SaleRepo) error {
		sales = sales[:0]
		for _, l := range lines {
			if err := products.Decrement(ctx, l.Product.ID, l.Quantity); err != nil {
				return err
			}
			sale := domain.Sale{
				ProductID: l.Product.ID,
				Quantity:  l.Quantity,
				Total:     l.Product.Price * int64(l.Quantity),
				Date:      fecha,
				Folio:     s.Folio(),
			}
			id, err := ledger.Insert(ctx, sale)
			if err != nil {
				return err
			}
			sale.ID = id
			sales = append(sales, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// Checkout validates then commits the whole cart. Empty carts are a no-op.
func (s *CheckoutService) Checkout(ctx context.Context, cart domain.Cart) ([]domain.Sale, error) {
	if cart.Empty() {
		return nil, nil
	}
	lines, err := s.Validate(ctx, cart)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, lines)
}

// SellOne records a counter sale from the admin panel. qty below 1 counts as 1.
func (s *CheckoutService) SellOne(ctx context.Context, productID int64, qty int) (domain.Sale, error) {
	var cart domain.Cart
	cart.Add(productID, qty)
	sales, err := s.Checkout(ctx, cart)
	if err != nil {
		return domain.Sale{}, err
	}
	return sales[0], nil
}
