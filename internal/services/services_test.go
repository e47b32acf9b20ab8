package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
	"vinylhub/internal/services"
)

type fixture struct {
	db       *sqlx.DB
	prods    *repos.ProductRepo
	sales    *repos.SaleRepo
	checkout *services.CheckoutService
	carts    *services.CartService
	auth     *services.AuthService
	reports  *services.ReportService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:", repos.AdminSeed{Username: "admin", Password: "1234"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prods := repos.NewProductRepo(db)
	sales := repos.NewSaleRepo(db)
	co := services.NewCheckoutService(prods, repos.NewTxRunner(db))
	co.Now = func() time.Time { return time.Date(2024, 5, 10, 14, 3, 5, 0, time.UTC) }
	return fixture{
		db:       db,
		prods:    prods,
		sales:    sales,
		checkout: co,
		carts:    services.NewCartService(prods),
		auth:     services.NewAuthService(repos.NewUserRepo(db)),
		reports:  services.NewReportService(sales, prods),
	}
}

func (f fixture) byCode(t *testing.T, code string) domain.Product {
	t.Helper()
	var p domain.Product
	require.NoError(t, f.db.Get(&p, `SELECT id, codigo, nombre, precio, stock, categoria FROM productos WHERE codigo = ?`, code))
	return p
}

func (f fixture) saleCount(t *testing.T) int {
	t.Helper()
	n, err := f.sales.Count(context.Background())
	require.NoError(t, err)
	return n
}
