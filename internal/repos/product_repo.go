package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"vinylhub/internal/domain"
)

const productCols = `id, codigo, nombre, precio, stock, categoria`

type ProductRepo struct{ db sqlx.ExtContext }

// NewProductRepo accepts a *sqlx.DB or a *sqlx.Tx.
func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+productCols+` FROM productos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.ErrNotFound
	}
	return p, err
}

// ByIDs returns the products that still exist among ids, keyed by id.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM productos WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// All lists the catalog grouped by category.
func (r *ProductRepo) All(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+productCols+` FROM productos ORDER BY categoria, nombre`)
	return out, err
}

func (r *ProductRepo) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+productCols+` FROM productos WHERE categoria = ? ORDER BY nombre`, category)
	return out, err
}

// ByName lists every product alphabetically, for the procesos picker.
func (r *ProductRepo) ByName(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+productCols+` FROM productos ORDER BY nombre`)
	return out, err
}

func (r *ProductRepo) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+productCols+` FROM productos ORDER BY id DESC LIMIT ?`, limit)
	return out, err
}

// Search matches q as a case-insensitive substring of codigo or nombre, newest first.
func (r *ProductRepo) Search(ctx context.Context, q string) ([]domain.Product, error) {
	like := "%" + strings.ToLower(q) + "%"
	var out []domain.Product
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT `+productCols+` FROM productos
	  WHERE LOWER(codigo) LIKE ? OR LOWER(nombre) LIKE ?
	  ORDER BY id DESC`, like, like)
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM productos`)
	return n, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO productos (codigo,nombre,precio,stock,categoria) VALUES (?,?,?,?,?)`,
		p.Code, p.Name, p.Price, p.Stock, p.Category)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("codigo %q: %w", p.Code, domain.ErrDuplicate)
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE productos SET codigo=?, nombre=?, precio=?, stock=?, categoria=? WHERE id=?`,
		p.Code, p.Name, p.Price, p.Stock, p.Category, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("codigo %q: %w", p.Code, domain.ErrDuplicate)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the product even when sales still reference it.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM productos WHERE id=?`, id)
	return err
}

// Decrement subtracts qty without a floor; callers validate stock beforehand.
func (r *ProductRepo) Decrement(ctx context.Context, id int64, qty int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE productos SET stock = stock - ? WHERE id = ?`, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("decrement product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
