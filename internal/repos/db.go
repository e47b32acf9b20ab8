package repos

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	applog "vinylhub/internal/log"
)

// AdminSeed is the account guaranteed to exist after OpenDB.
type AdminSeed struct {
	Username string
	Password string
}

// Connect opens the sqlite file without touching the schema.
// The pool is pinned to one connection: sqlite serializes writers anyway and
// ":memory:" databases are per-connection.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB connects, creates the schema and seeds the admin user and the demo catalog.
func OpenDB(dsn string, admin AdminSeed) (*sqlx.DB, error) {
	db, err := Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedAdmin(db, admin); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedProductsIfEmpty(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	// ventas.producto_id declares the reference but foreign_keys stays off:
	// deleting a product leaves its sales in place.
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL COLLATE NOCASE,
  password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS productos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  codigo TEXT UNIQUE NOT NULL,
  nombre TEXT NOT NULL,
  precio INTEGER NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  categoria TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_productos_categoria ON productos(categoria);

CREATE TABLE IF NOT EXISTS ventas (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  producto_id INTEGER NOT NULL,
  cantidad INTEGER NOT NULL,
  total INTEGER NOT NULL,
  fecha TEXT NOT NULL,
  folio TEXT NOT NULL UNIQUE,
  FOREIGN KEY (producto_id) REFERENCES productos(id)
);
CREATE INDEX IF NOT EXISTS idx_ventas_fecha ON ventas(fecha);
`
	_, err := db.Exec(schema)
	return err
}

func seedAdmin(db *sqlx.DB, admin AdminSeed) error {
	if admin.Username == "" {
		return nil
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO users (username, password) VALUES (?,?)`, admin.Username, admin.Password)
	return err
}

// SeedProducts is the demo catalog inserted into an empty productos table.
var SeedProducts = []struct {
	Code, Name string
	Price      int64
	Stock      int
	Category   string
}{
	{"V-001", "Vinilo — Pink Floyd - The Dark Side of the Moon", 19990, 15, "vinilos"},
	{"V-002", "Vinilo — The Beatles - Abbey Road", 18990, 12, "vinilos"},
	{"T-100", "Tornamesa Audio-Technica AT-LP60X", 149990, 6, "tornamesas"},
	{"A-210", "Cepillo limpiador de vinilos", 6990, 30, "accesorios"},
	{"C-300", "Combo: Tornamesa + Vinilo sorpresa", 169990, 5, "combos"},
}

func seedProductsIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM productos`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Logger().Info().Int("products", len(SeedProducts)).Msg("seed.catalog")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, p := range SeedProducts {
		if _, err := tx.Exec(`INSERT INTO productos (codigo,nombre,precio,stock,categoria) VALUES (?,?,?,?,?)`,
			p.Code, p.Name, p.Price, p.Stock, p.Category); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
