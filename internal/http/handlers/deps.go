package handlers

import (
	"github.com/jmoiron/sqlx"

	"vinylhub/internal/config"
	"vinylhub/internal/repos"
	"vinylhub/internal/services"
)

type Deps struct {
	Auth    *AuthHandler
	Store   *StoreHandler
	Cart    *CartHandler
	Admin   *AdminHandler
	Process *ProcessHandler
	Report  *ReportHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, sessions *Sessions) *Deps {
	prodRepo := repos.NewProductRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := services.NewAuthService(userRepo)
	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(prodRepo)
	checkoutSvc := services.NewCheckoutService(prodRepo, repos.NewTxRunner(db))
	reportSvc := services.NewReportService(saleRepo, prodRepo)

	return &Deps{
		Auth:    &AuthHandler{Auth: authSvc, Sessions: sessions},
		Store:   &StoreHandler{Catalog: catalogSvc, Reports: reportSvc},
		Cart:    &CartHandler{Cart: cartSvc, Checkout: checkoutSvc, Sessions: sessions},
		Admin:   &AdminHandler{Catalog: catalogSvc, Reports: reportSvc},
		Process: &ProcessHandler{Catalog: catalogSvc, Checkout: checkoutSvc, Reports: reportSvc},
		Report:  &ReportHandler{Reports: reportSvc, Location: cfg.Location()},
	}
}
