package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/vat-invoicing/internal/config"
	"github.com/nurpe/vat-invoicing/internal/excel"
	"github.com/nurpe/vat-invoicing/internal/http/middleware"
	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/pdf"
	"github.com/nurpe/vat-invoicing/internal/repository"
	"github.com/nurpe/vat-invoicing/internal/service"
)

type stubRepo struct {
	sequence int64
	invoices map[uuid.UUID]*model.Invoice
}

func newStubRepo() *stubRepo {
	return &stubRepo{invoices: map[uuid.UUID]*model.Invoice{}}
}

func (s *stubRepo) NextSequence(context.Context, string, int) (int64, error) {
	s.sequence++
	return s.sequence, nil
}

func (s *stubRepo) CreateInvoice(_ context.Context, invoice model.Invoice) (*model.Invoice, error) {
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	stored := invoice
	s.invoices[invoice.ID] = &stored
	return &invoice, nil
}

func (s *stubRepo) GetInvoice(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, ok := s.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (s *stubRepo) ListInvoices(context.Context, repository.InvoiceFilter) ([]model.Invoice, error) {
	var result []model.Invoice
	for _, invoice := range s.invoices {
		result = append(result, *invoice)
	}
	return result, nil
}

func (s *stubRepo) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, status model.InvoiceStatus, voidReason *string) error {
	invoice, ok := s.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	invoice.Status = status
	invoice.VoidReason = voidReason
	return nil
}

func setupRouter(t *testing.T, principal model.Principal) (*gin.Engine, *stubRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newStubRepo()
	cfg := &config.Config{
		Environment: "test",
		VAT: config.VATConfig{
			Jurisdiction:   "TL",
			Enabled:        true,
			DefaultRate:    "10",
			RequiredFields: []string{"supplierName", "supplierVATID", "issueDate", "lines", "total"},
			ReceiptPrefix:  "INV",
		},
	}
	svc, err := service.NewInvoiceService(repo, excel.NewGenerator(), pdf.NewGenerator(), cfg)
	require.NoError(t, err)

	handler := NewHandler(svc, zerolog.Nop())
	fakeAuth := func(c *gin.Context) {
		middleware.SetPrincipal(c, principal)
		c.Next()
	}
	router := NewRouter(handler, fakeAuth, "test")
	return router, repo
}

func issueBody() []byte {
	return []byte(`{
		"supplier_name": "Loja Central Lda",
		"supplier_vat_id": "TL-100200300",
		"customer_name": "Cliente Exemplo",
		"issue_date": "2024-06-10",
		"lines": [
			{"description": "Consulting services", "quantity": "2", "unit_price": "50.00", "category": "standard"}
		]
	}`)
}

func postJSON(router *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(nethttp.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIssueInvoiceEndpoint(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleAccountant}
	router, _ := setupRouter(t, principal)

	rec := postJSON(router, "/invoices", issueBody())
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	var resp invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INV-2024-000001", resp.ReceiptNumber)
	assert.Equal(t, "ISSUED", resp.Status)
	assert.Equal(t, "2024-06-10", resp.IssueDate)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "110.00", resp.Total.StringFixed(2))
}

func TestIssueInvoiceEndpoint_ValidationErrors(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleAccountant}
	router, _ := setupRouter(t, principal)

	body := []byte(`{
		"supplier_name": "Loja Central Lda",
		"supplier_vat_id": "TL-100200300",
		"issue_date": "2024-06-10",
		"lines": [
			{"description": "Bad line", "quantity": "-1", "unit_price": "50.00", "vat_rate": "150"}
		]
	}`)
	rec := postJSON(router, "/invoices", body)
	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Errors)
}

func TestIssueInvoiceEndpoint_Forbidden(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleViewer}
	router, _ := setupRouter(t, principal)

	rec := postJSON(router, "/invoices", issueBody())
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)
}

func TestGetInvoiceEndpoint_NotFound(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleAccountant}
	router, _ := setupRouter(t, principal)

	req := httptest.NewRequest(nethttp.MethodGet, "/invoices/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestVoidInvoiceEndpoint(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleAccountant}
	router, _ := setupRouter(t, principal)

	rec := postJSON(router, "/invoices", issueBody())
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	var created invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	voidPath := fmt.Sprintf("/invoices/%s/void", created.ID)
	rec = postJSON(router, voidPath, []byte(`{"reason": "duplicate entry"}`))
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	var voided invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &voided))
	assert.Equal(t, "VOID", voided.Status)

	// Second void conflicts.
	rec = postJSON(router, voidPath, []byte(`{"reason": "again"}`))
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	principal := model.Principal{OrgID: uuid.New(), UserID: uuid.New(), Role: model.RoleAccountant}
	router, _ := setupRouter(t, principal)

	rec := postJSON(router, "/invoices", issueBody())
	require.Equal(t, nethttp.StatusCreated, rec.Code)
	var created invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(nethttp.MethodGet, fmt.Sprintf("/invoices/%s/export", created.ID), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-INV-2024-000001.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())

	req = httptest.NewRequest(nethttp.MethodGet, fmt.Sprintf("/invoices/%s/export/pdf", created.ID), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}
