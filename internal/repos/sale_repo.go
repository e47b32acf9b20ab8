package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vinylhub/internal/domain"
)

// Product names for sales whose product was deleted.
const deletedProduct = "(producto eliminado)"

// Unit price is derived from the sale itself so it reflects the price paid.
const saleRowCols = `v.id, v.producto_id, v.cantidad, v.total, v.fecha, v.folio,
  COALESCE(p.nombre, '` + deletedProduct + `') AS producto_nombre,
  CASE WHEN v.cantidad > 0 THEN v.total / v.cantidad ELSE 0 END AS precio_unit`

type SaleRepo struct{ db sqlx.ExtContext }

func NewSaleRepo(db sqlx.ExtContext) *SaleRepo { return &SaleRepo{db: db} }

// Insert appends a sale to the ledger.
func (r *SaleRepo) Insert(ctx context.Context, s domain.Sale) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ventas (producto_id,cantidad,total,fecha,folio) VALUES (?,?,?,?,?)`,
		s.ProductID, s.Quantity, s.Total, s.Date, s.Folio)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("folio %q: %w", s.Folio, domain.ErrDuplicate)
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SaleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM ventas`)
	return n, err
}

// Latest returns the most recent sales, newest first.
func (r *SaleRepo) Latest(ctx context.Context, limit int) ([]domain.SaleRow, error) {
	var out []domain.SaleRow
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT `+saleRowCols+`
	  FROM ventas v LEFT JOIN productos p ON p.id = v.producto_id
	  ORDER BY v.id DESC LIMIT ?`, limit)
	return out, err
}

// Activity is the dashboard feed; it only lists sales whose product still exists.
func (r *SaleRepo) Activity(ctx context.Context, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT v.id, v.folio, p.nombre, v.fecha
	  FROM ventas v JOIN productos p ON p.id = v.producto_id
	  ORDER BY v.id DESC LIMIT ?`, limit)
	return out, err
}

// MonthTotal sums the sales of the current calendar month (UTC).
func (r *SaleRepo) MonthTotal(ctx context.Context) (int64, error) {
	var s int64
	err := sqlx.GetContext(ctx, r.db, &s, `
	  SELECT COALESCE(SUM(total),0) FROM ventas
	  WHERE strftime('%m', fecha) = strftime('%m','now') AND strftime('%Y', fecha) = strftime('%Y','now')`)
	return s, err
}

// Range lists sales whose calendar date falls within [from, to]; empty bounds are open.
func (r *SaleRepo) Range(ctx context.Context, from, to string) ([]domain.SaleRow, error) {
	where := ""
	args := []any{}
	if from != "" {
		where += ` AND date(v.fecha) >= date(?)`
		args = append(args, from)
	}
	if to != "" {
		where += ` AND date(v.fecha) <= date(?)`
		args = append(args, to)
	}
	var out []domain.SaleRow
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT `+saleRowCols+`
	  FROM ventas v LEFT JOIN productos p ON p.id = v.producto_id
	  WHERE 1=1`+where+`
	  ORDER BY v.fecha DESC, v.id DESC`, args...)
	return out, err
}

// Each streams every sale, newest first, to fn.
func (r *SaleRepo) Each(ctx context.Context, fn func(domain.SaleRow) error) error {
	rows, err := r.db.QueryxContext(ctx, `
	  SELECT `+saleRowCols+`
	  FROM ventas v LEFT JOIN productos p ON p.id = v.producto_id
	  ORDER BY v.fecha DESC, v.id DESC`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.SaleRow
		if err := rows.StructScan(&s); err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}
