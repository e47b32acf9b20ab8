package domain

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
}

// SessionUser is the identity kept in the session after login.
type SessionUser struct {
	ID       int64
	Username string
}

type Product struct {
	ID       int64  `db:"id"`
	Code     string `db:"codigo"`
	Name     string `db:"nombre"`
	Price    int64  `db:"precio"`
	Stock    int    `db:"stock"`
	Category string `db:"categoria"`
}

// Sale is one row of the ledger. Rows are never updated.
type Sale struct {
	ID        int64  `db:"id"`
	ProductID int64  `db:"producto_id"`
	Quantity  int    `db:"cantidad"`
	Total     int64  `db:"total"`
	Date      string `db:"fecha"`
	Folio     string `db:"folio"`
}

// SaleRow is a sale joined with its product for listings and reports.
type SaleRow struct {
	Sale
	ProductName string `db:"producto_nombre"`
	UnitPrice   int64  `db:"precio_unit"`
}

// Activity is a short line for the dashboard feed.
type Activity struct {
	ID          int64  `db:"id"`
	Folio       string `db:"folio"`
	ProductName string `db:"nombre"`
	Date        string `db:"fecha"`
}

type Stats struct {
	ProductCount int
	MonthSales   int64
	Recent       []Activity
}
