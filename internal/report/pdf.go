package report

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"vinylhub/internal/domain"
)

const (
	PDFFilename    = "reporte_ventas.pdf"
	PDFContentType = "application/pdf"
)

var (
	colorPrimary = &props.Color{Red: 33, Green: 33, Blue: 33}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// PDFReport is what the PDF export renders.
type PDFReport struct {
	From, To    string
	Rows        []domain.SaleRow
	Total       int64
	GeneratedAt time.Time
	Location    *time.Location
}

// RenderPDF lays out the sales table on A4 and returns the document bytes.
func RenderPDF(r PDFReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ventas", true).
		WithAuthor("VinylHub", true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))
	m.AddRows(tableHeaderRow())
	for _, s := range r.Rows {
		m.AddRows(saleRow(s, r.Location))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate report: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r PDFReport) core.Row {
	period := "Todas las ventas"
	if r.From != "" || r.To != "" {
		period = fmt.Sprintf("Desde %s hasta %s", orDash(r.From), orDash(r.To))
	}
	gen := r.GeneratedAt
	if r.Location != nil {
		gen = gen.In(r.Location)
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New("VinylHub", props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Reporte de ventas", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(period, props.Text{Size: 8, Align: align.Right, Top: 2}),
			text.New("Generado: "+gen.Format("02-01-2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("Total", 2, align.Right),
		h("Folio", 2, align.Right),
	)
}

func saleRow(s domain.SaleRow, loc *time.Location) core.Row {
	cell := func(v string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(v, props.Text{Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		cell(LocalDate(s.Date, loc, "02-01-2006 15:04"), 3, align.Left),
		cell(s.ProductName, 4, align.Left),
		cell(strconv.Itoa(s.Quantity), 1, align.Center),
		cell(CLP(s.Total), 2, align.Right),
		cell(s.Folio, 2, align.Right),
	)
}

func totalRow(r PDFReport) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New(fmt.Sprintf("%d ventas", len(r.Rows)), props.Text{Size: 9, Top: 2, Color: colorGray})),
		col.New(4).Add(text.New("Total: "+CLP(r.Total), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2,
		})),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
