package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"vinylhub/internal/domain"
)

const (
	CSVFilename    = "reporte_ventas.csv"
	CSVContentType = "text/csv; charset=utf-8"

	// es-CL short date as shown to the shop owner.
	csvDateLayout = "02-01-2006, 15:04:05"
)

var csvHeader = []string{"Fecha", "Producto", "Cantidad", "Precio", "Total", "Folio"}

// Source feeds sale rows to fn, newest first.
type Source func(fn func(domain.SaleRow) error) error

// WriteCSV writes the header and one record per sale. Dates are shown in loc.
func WriteCSV(w io.Writer, loc *time.Location, each Source) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	err := each(func(s domain.SaleRow) error {
		return cw.Write([]string{
			LocalDate(s.Date, loc, csvDateLayout),
			s.ProductName,
			strconv.Itoa(s.Quantity),
			strconv.FormatInt(s.UnitPrice, 10),
			strconv.FormatInt(s.Total, 10),
			s.Folio,
		})
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// LocalDate re-renders a stored RFC3339 timestamp in loc. Unparsable values are returned as is.
func LocalDate(stored string, loc *time.Location, layout string) string {
	t, err := time.Parse(time.RFC3339Nano, stored)
	if err != nil {
		return stored
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(layout)
}
