package repos

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"vinylhub/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// ByUsername returns every user whose name matches case-insensitively.
func (r *UserRepo) ByUsername(ctx context.Context, username string) ([]domain.User, error) {
	return UsersNamed(ctx, r.DB, username)
}

// UsersNamed matches username under Unicode case folding. SQLite's LOWER and NOCASE
// only fold ASCII, so rows are narrowed by character count and compared with EqualFold.
func UsersNamed(ctx context.Context, q sqlx.QueryerContext, username string) ([]domain.User, error) {
	var rows []domain.User
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT id, username, password FROM users WHERE LENGTH(username) = ? ORDER BY id`,
		utf8.RuneCountInString(username)); err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, u := range rows {
		if strings.EqualFold(u.Username, username) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Create stores the password as given. A name equal to an existing one under case
// folding is a duplicate.
func (r *UserRepo) Create(ctx context.Context, username, password string) (domain.User, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	taken, err := UsersNamed(ctx, tx, username)
	if err != nil {
		return domain.User{}, err
	}
	if len(taken) > 0 {
		return domain.User{}, fmt.Errorf("username %q: %w", username, domain.ErrDuplicate)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?,?)`, username, password)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("username %q: %w", username, domain.ErrDuplicate)
		}
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: id, Username: username, Password: password}, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.SelectContext(ctx, &out, `SELECT id, username, password FROM users ORDER BY id`)
	return out, err
}
