// Package maint holds the out-of-band operations over the users table run by vinyladmin.
package maint

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"vinylhub/internal/domain"
	"vinylhub/internal/repos"
	"vinylhub/internal/services"
)

const (
	DefaultPassword = "1234"
	checkRowLimit   = 200
)

// ErrNoDatabase is returned when the sqlite file to maintain does not exist.
var ErrNoDatabase = errors.New("database file not found")

var (
	reBadUser = regexp.MustCompile(`(?i)malo|bad`)
)

// HashMode controls whether imported passwords are stored as bcrypt hashes.
type HashMode string

const (
	HashAuto   HashMode = "auto" // hash when the table already holds hashes
	HashAlways HashMode = "always"
	HashNever  HashMode = "never"
)

func ParseHashMode(s string) (HashMode, error) {
	switch m := HashMode(strings.ToLower(strings.TrimSpace(s))); m {
	case HashAuto, HashAlways, HashNever:
		return m, nil
	case "":
		return HashAuto, nil
	default:
		return "", fmt.Errorf("hash mode %q: %w", s, domain.ErrInvalidInput)
	}
}

type Maint struct {
	DB  *sqlx.DB
	Out io.Writer
	// Cost is the bcrypt cost for new hashes.
	Cost int
}

// Open connects to an existing sqlite file without creating or seeding it.
func Open(path string, out io.Writer) (*Maint, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDatabase)
	}
	db, err := repos.Connect(path)
	if err != nil {
		return nil, err
	}
	return New(db, out), nil
}

func New(db *sqlx.DB, out io.Writer) *Maint {
	return &Maint{DB: db, Out: out, Cost: bcrypt.DefaultCost}
}

// Users prints every user with its stored password.
func (m *Maint) Users(ctx context.Context) error {
	var users []domain.User
	if err := m.DB.SelectContext(ctx, &users, `SELECT id, username, password FROM users ORDER BY id`); err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	tw := tabwriter.NewWriter(m.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tPASSWORD")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Password)
	}
	return tw.Flush()
}

// Check reports file stats, tables, the users columns and up to 200 users.
func (m *Maint) Check(ctx context.Context, path string) error {
	if path != "" {
		st, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		fmt.Fprintf(m.Out, "db: %s (%d bytes, modified %s)\n", path, st.Size(), st.ModTime().Format(time.RFC3339))
	}

	var tables []string
	if err := m.DB.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	fmt.Fprintf(m.Out, "tables: %s\n", strings.Join(tables, ", "))

	var cols []string
	if err := m.DB.SelectContext(ctx, &cols, `SELECT name FROM pragma_table_info('users')`); err != nil {
		return fmt.Errorf("users columns: %w", err)
	}
	fmt.Fprintf(m.Out, "users columns: %s\n", strings.Join(cols, ", "))

	var users []domain.User
	if err := m.DB.SelectContext(ctx, &users,
		`SELECT id, username, password FROM users ORDER BY id LIMIT ?`, checkRowLimit); err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	fmt.Fprintf(m.Out, "users (max %d):\n", checkRowLimit)
	tw := tabwriter.NewWriter(m.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tPASSWORD")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\n", u.Username, u.Password)
	}
	return tw.Flush()
}

// CountTest counts the load-test accounts (usernames starting with "testuser").
func (m *Maint) CountTest(ctx context.Context) (int, error) {
	var n int
	err := m.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE username LIKE 'testuser%'`)
	return n, err
}

// RemoveHeader deletes the account created when a CSV header row was imported as data.
func (m *Maint) RemoveHeader(ctx context.Context) (int64, error) {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM users WHERE username = 'username'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasBcrypt samples stored passwords and reports whether any is a bcrypt hash.
func HasBcrypt(ctx context.Context, q sqlx.QueryerContext) (bool, error) {
	var sample []string
	if err := sqlx.SelectContext(ctx, q, &sample,
		`SELECT password FROM users WHERE password IS NOT NULL LIMIT 10`); err != nil {
		return false, err
	}
	for _, p := range sample {
		if services.IsBcryptHash(p) {
			return true, nil
		}
	}
	return false, nil
}

type ImportOptions struct {
	Hash       HashMode
	SkipHeader bool
	Latin1     bool // input is ISO-8859-1 rather than UTF-8
}

type ImportResult struct {
	Inserted   int
	Existing   int
	SkippedBad int
	Hashed     bool
}

// Import reads username,password lines and inserts the new users in one transaction.
// Names containing "malo" or "bad" are skipped; an empty password becomes DefaultPassword.
func (m *Maint) Import(ctx context.Context, r io.Reader, opts ImportOptions) (ImportResult, error) {
	var res ImportResult
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return res, fmt.Errorf("read csv: %w", err)
	}
	if opts.SkipHeader && len(records) > 0 {
		records = records[1:]
	}

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	switch opts.Hash {
	case HashAlways:
		res.Hashed = true
	case HashNever:
	default:
		if res.Hashed, err = HasBcrypt(ctx, tx); err != nil {
			return res, err
		}
	}

	for _, rec := range records {
		username := strings.TrimSpace(rec[0])
		password := ""
		if len(rec) > 1 {
			password = strings.TrimSpace(rec[1])
		}
		if username == "" {
			continue
		}
		if reBadUser.MatchString(username) {
			res.SkippedBad++
			continue
		}
		existing, err := repos.UsersNamed(ctx, tx, username)
		if err != nil {
			return res, err
		}
		if len(existing) > 0 {
			res.Existing++
			continue
		}
		if password == "" {
			password = DefaultPassword
		}
		stored, err := m.store(password, res.Hashed)
		if err != nil {
			return res, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?,?)`, username, stored); err != nil {
			return res, fmt.Errorf("insert %q: %w", username, err)
		}
		res.Inserted++
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

type KeepAdminResult struct {
	Deleted int64
	Created bool
	Hashed  bool
}

// KeepAdmin deletes every user except username and makes sure it exists with password.
func (m *Maint) KeepAdmin(ctx context.Context, username, password string) (KeepAdminResult, error) {
	var res KeepAdminResult
	if strings.TrimSpace(username) == "" || password == "" {
		return res, fmt.Errorf("admin credentials: %w", domain.ErrInvalidInput)
	}
	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	if res.Hashed, err = HasBcrypt(ctx, tx); err != nil {
		return res, err
	}
	del, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username <> ?`, username)
	if err != nil {
		return res, err
	}
	res.Deleted, _ = del.RowsAffected()

	stored, err := m.store(password, res.Hashed)
	if err != nil {
		return res, err
	}
	upd, err := tx.ExecContext(ctx, `UPDATE users SET password = ? WHERE username = ?`, stored, username)
	if err != nil {
		return res, err
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?,?)`, username, stored); err != nil {
			return res, err
		}
		res.Created = true
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

// PrintUsernames lists the remaining usernames, one per line.
func (m *Maint) PrintUsernames(ctx context.Context) error {
	var names []string
	if err := m.DB.SelectContext(ctx, &names, `SELECT username FROM users ORDER BY id`); err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(m.Out, n)
	}
	return nil
}

func (m *Maint) store(password string, hash bool) (string, error) {
	if !hash {
		return password, nil
	}
	cost := m.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
