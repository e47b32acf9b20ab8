package http_test

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminBrowser(t *testing.T) (*browser, func() []logEntry) {
	t.Helper()
	logs := captureLogs(t)
	app, _ := newTestApp(t, testConfig())
	b := newBrowser(t, app)
	require.Equal(t, http.StatusFound, b.login("admin", "1234").StatusCode)
	return b, logs.entries
}

func productForm(code, name, price, stock, cat string) url.Values {
	return url.Values{"codigo": {code}, "nombre": {name}, "precio": {price}, "stock": {stock}, "categoria": {cat}}
}

func TestAdminProductCRUD(t *testing.T) {
	logs := captureLogs(t)
	app, db := newTestApp(t, testConfig())
	b := newBrowser(t, app)
	require.Equal(t, http.StatusFound, b.login("admin", "1234").StatusCode)

	resp, _ := b.post("/admin/productos", productForm("V-003", "Vinilo Nirvana - Nevermind", "21990abc", "7", "vinilos"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/productos", resp.Header.Get("Location"))

	var price int64
	require.NoError(t, db.Get(&price, `SELECT precio FROM productos WHERE codigo = 'V-003'`))
	assert.Equal(t, int64(21990), price)

	resp, body := b.post("/admin/productos/new", productForm("V-003", "Otro", "1", "1", "vinilos"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "ya existe un producto con ese código")

	resp, body = b.post("/admin/productos", productForm("V-004", "", "1", "1", "vinilos"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Completa todos los campos")

	_, body = b.get("/admin/productos?q=nirv")
	assert.Contains(t, body, "Nevermind")
	assert.NotContains(t, body, "Abbey Road")

	id := productID(t, db, "V-003")
	path := "/admin/productos/" + strconv.FormatInt(id, 10)
	resp, body = b.get(path + "/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Nevermind")

	resp, _ = b.post(path, productForm("V-003", "Vinilo Nirvana - Nevermind", "19990", "2", "vinilos"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, 2, stockOf(t, db, "V-003"))

	resp, _ = b.post(path+"/edit", productForm("V-001", "Choca", "1", "1", "vinilos"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = b.post(path+"/delete", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM productos WHERE codigo = 'V-003'`))
	assert.Zero(t, n)

	resp, _ = b.get(path + "/edit")
	assert.Equal(t, "/admin/productos", resp.Header.Get("Location"))

	entries := logs.entries()
	for _, action := range []string{"admin.products.create", "admin.products.update", "admin.products.delete"} {
		e, ok := findAction(entries, action)
		require.True(t, ok, action)
		assert.Equal(t, "audit", e.Kind)
		assert.NotZero(t, e.UserID)
	}
}

func TestAdminProcesos(t *testing.T) {
	app, db := newTestApp(t, testConfig())
	b := newBrowser(t, app)
	require.Equal(t, http.StatusFound, b.login("admin", "1234").StatusCode)
	t100 := strconv.FormatInt(productID(t, db, "T-100"), 10)

	resp, body := b.post("/admin/procesos", url.Values{"producto_id": {t100}, "cantidad": {"7"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Stock insuficiente o producto no existe")
	assert.Equal(t, 6, stockOf(t, db, "T-100"))

	resp, _ = b.post("/admin/procesos", url.Values{"producto_id": {t100}, "cantidad": {"2"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, 4, stockOf(t, db, "T-100"))

	_, body = b.get("/admin/procesos")
	assert.Contains(t, body, "$299.980")
}

func TestReportsCSVMatchesLedger(t *testing.T) {
	app, db := newTestApp(t, testConfig())
	b := newBrowser(t, app)
	require.Equal(t, http.StatusFound, b.login("admin", "1234").StatusCode)

	for _, code := range []string{"V-001", "A-210", "C-300"} {
		resp, _ := b.post("/admin/procesos", url.Values{"producto_id": {strconv.FormatInt(productID(t, db, code), 10)}, "cantidad": {"2"}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}
	// a sale whose product is later deleted still shows up
	resp, _ := b.post("/admin/productos/"+strconv.FormatInt(productID(t, db, "A-210"), 10)+"/delete", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := b.get("/admin/reportes.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=reporte_ventas.csv", resp.Header.Get("Content-Disposition"))

	recs, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	var sales int
	require.NoError(t, db.Get(&sales, `SELECT COUNT(*) FROM ventas`))
	require.Len(t, recs, sales+1)
	assert.Equal(t, []string{"Fecha", "Producto", "Cantidad", "Precio", "Total", "Folio"}, recs[0])
	names := []string{}
	for _, rec := range recs[1:] {
		qty, _ := strconv.Atoi(rec[2])
		price, _ := strconv.Atoi(rec[3])
		total, _ := strconv.Atoi(rec[4])
		assert.Equal(t, qty*price, total)
		names = append(names, rec[1])
	}
	assert.Contains(t, names, "(producto eliminado)")
}

func TestReportsPageAndPDF(t *testing.T) {
	b, _ := adminBrowser(t)

	resp, body := b.get("/admin/reportes?desde=2024-13-01&hasta=2999-01-01")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "formato inválido")
	assert.Contains(t, body, "Sin ventas en el período")

	resp, body = b.get("/admin/reportes.pdf?desde=2024-01-01")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "%PDF"))
}

func TestLoginIsAudited(t *testing.T) {
	_, entries := adminBrowser(t)

	e, ok := findAction(entries(), "auth.login.success")
	require.True(t, ok)
	assert.Equal(t, "audit", e.Kind)
	assert.Equal(t, float64(1), e.UserID)
}

func TestFailuresRenderFriendlyPage(t *testing.T) {
	logs := captureLogs(t)
	app, db := newTestApp(t, testConfig())
	b := newBrowser(t, app)
	require.Equal(t, http.StatusFound, b.login("admin", "1234").StatusCode)
	require.NoError(t, db.Close())

	resp, body := b.get("/admin/reportes.csv")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Algo salió mal")
	assert.NotContains(t, body, "closed")

	_, ok := findAction(logs.entries(), "server.error")
	assert.True(t, ok)
}
