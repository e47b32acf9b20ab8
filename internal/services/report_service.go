package services

import (
	"context"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
)

type ReportService struct {
	Sales *repos.SaleRepo
	Prods *repos.ProductRepo
}

func NewReportService(sales *repos.SaleRepo, prods *repos.ProductRepo) *ReportService {
	return &ReportService{Sales: sales, Prods: prods}
}

type SalesReport struct {
	From, To string
	Rows     []domain.SaleRow
	Total    int64
}

// Range builds the report for [from, to]; empty bounds are open.
func (s *ReportService) Range(ctx context.Context, from, to string) (SalesReport, error) {
	rows, err := s.Sales.Range(ctx, from, to)
	if err != nil {
		return SalesReport{}, err
	}
	rep := SalesReport{From: from, To: to, Rows: rows}
	for _, r := range rows {
		rep.Total += r.Total
	}
	return rep, nil
}

// Each streams the whole ledger for exports.
func (s *ReportService) Each(ctx context.Context, fn func(domain.SaleRow) error) error {
	return s.Sales.Each(ctx, fn)
}

func (s *ReportService) Recent(ctx context.Context, limit int) ([]domain.SaleRow, error) {
	return s.Sales.Latest(ctx, limit)
}

// Dashboard gathers the counters shown on / and /admin.
func (s *ReportService) Dashboard(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	var err error
	if st.ProductCount, err = s.Prods.Count(ctx); err != nil {
		return st, err
	}
	if st.MonthSales, err = s.Sales.MonthTotal(ctx); err != nil {
		return st, err
	}
	if st.Recent, err = s.Sales.Activity(ctx, 8); err != nil {
		return st, err
	}
	return st, nil
}
