package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/domain"
	applog "vinylhub/internal/log"
	"vinylhub/internal/report"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

type ReportHandler struct {
	Reports  *services.ReportService
	Location *time.Location
}

// rangeQuery reads desde/hasta. Malformed dates are dropped and reported in the notice.
func rangeQuery(c *fiber.Ctx) (from, to, notice string) {
	from, okFrom := validate.Date(c.Query("desde"))
	to, okTo := validate.Date(c.Query("hasta"))
	if !okFrom || !okTo {
		applog.Security(c, "validation.fail", map[string]any{"field": "fecha"})
		notice = "Se ignoró una fecha con formato inválido (usa AAAA-MM-DD)."
	}
	return from, to, notice
}

// GET /admin/reportes
func (h *ReportHandler) Page(c *fiber.Ctx) error {
	from, to, notice := rangeQuery(c)
	rep, err := h.Reports.Range(c.UserContext(), from, to)
	if err != nil {
		applog.Error(c, "admin.reports.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos generar el reporte.")
	}
	return render(c, "admin/reportes", fiber.Map{"Report": rep, "Notice": notice})
}

// GET /admin/reportes.csv
func (h *ReportHandler) CSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, report.CSVContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+report.CSVFilename)

	ctx := c.UserContext()
	each := func(fn func(domain.SaleRow) error) error { return h.Reports.Each(ctx, fn) }
	if err := report.WriteCSV(c.Response().BodyWriter(), h.Location, each); err != nil {
		c.Response().ResetBody()
		c.Set(fiber.HeaderContentDisposition, "")
		return err
	}
	applog.Audit(c, "admin.reports.export", map[string]any{"format": "csv"})
	return nil
}

// GET /admin/reportes.pdf
func (h *ReportHandler) PDF(c *fiber.Ctx) error {
	from, to, _ := rangeQuery(c)
	b, err := h.pdf(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, report.PDFContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+report.PDFFilename)
	applog.Audit(c, "admin.reports.export", map[string]any{"format": "pdf", "desde": from, "hasta": to})
	return c.Send(b)
}

func (h *ReportHandler) pdf(ctx context.Context, from, to string) ([]byte, error) {
	rep, err := h.Reports.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.RenderPDF(report.PDFReport{
		From: rep.From, To: rep.To, Rows: rep.Rows, Total: rep.Total,
		GeneratedAt: time.Now(), Location: h.Location,
	})
}
