package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/vat-invoicing/internal/http/middleware"
	"github.com/nurpe/vat-invoicing/internal/model"
	"github.com/nurpe/vat-invoicing/internal/service"
)

type Handler struct {
	invoices *service.InvoiceService
	log      zerolog.Logger
}

func NewHandler(invoices *service.InvoiceService, log zerolog.Logger) *Handler {
	return &Handler{invoices: invoices, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/invoices", h.issueInvoice)
	protected.GET("/invoices", h.listInvoices)
	protected.GET("/invoices/:id", h.getInvoice)
	protected.POST("/invoices/:id/void", h.voidInvoice)
	protected.GET("/invoices/:id/export", h.exportInvoiceExcel)
	protected.GET("/invoices/:id/export/pdf", h.exportInvoicePDF)
}

type lineItemRequest struct {
	Description string           `json:"description" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal  `json:"unit_price" binding:"required"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	Category    string           `json:"category"`
}

type issueInvoiceRequest struct {
	SupplierName  string            `json:"supplier_name" binding:"required"`
	SupplierVATID string            `json:"supplier_vat_id" binding:"required"`
	CustomerName  string            `json:"customer_name"`
	IssueDate     string            `json:"issue_date" binding:"required"`
	Currency      string            `json:"currency"`
	Lines         []lineItemRequest `json:"lines" binding:"required"`
}

type voidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type lineItemResponse struct {
	LineNo      int             `json:"line_no"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Category    string          `json:"category"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

type invoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	SupplierName  string             `json:"supplier_name"`
	SupplierVATID string             `json:"supplier_vat_id"`
	CustomerName  string             `json:"customer_name"`
	ReceiptNumber string             `json:"receipt_number"`
	IssueDate     string             `json:"issue_date"`
	Currency      string             `json:"currency"`
	Lines         []lineItemResponse `json:"lines,omitempty"`
	NetTotal      decimal.Decimal    `json:"net_total"`
	VATTotal      decimal.Decimal    `json:"vat_total"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	VoidReason    *string            `json:"void_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (h *Handler) issueInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req issueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue_date"})
		return
	}

	lines := make([]service.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.LineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			VATRate:     line.VATRate,
			Category:    line.Category,
		})
	}

	invoice, err := h.invoices.IssueInvoice(c.Request.Context(), service.IssueInvoiceInput{
		SupplierName:  req.SupplierName,
		SupplierVATID: req.SupplierVATID,
		CustomerName:  req.CustomerName,
		IssueDate:     issueDate,
		Currency:      req.Currency,
		Lines:         lines,
		Principal:     principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvoiceResponse(invoice, true))
}

func (h *Handler) getInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	invoice, err := h.invoices.GetInvoice(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInvoiceResponse(invoice, true))
}

func (h *Handler) listInvoices(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	input := service.ListInvoicesInput{
		SupplierVATID: strings.TrimSpace(c.Query("supplier_vat_id")),
		Principal:     principal,
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		input.Status = &status
	}

	invoices, err := h.invoices.ListInvoices(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, toInvoiceResponse(&invoices[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"invoices": responses})
}

func (h *Handler) voidInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	var req voidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoices.VoidInvoice(c.Request.Context(), service.VoidInvoiceInput{
		InvoiceID: id,
		Reason:    req.Reason,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInvoiceResponse(invoice, true))
}

func (h *Handler) exportInvoiceExcel(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	result, err := h.invoices.ExportInvoiceExcel(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) exportInvoicePDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	result, err := h.invoices.ExportInvoicePDF(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "invoice failed validation",
			"errors": validationErr.Errors,
		})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyVoid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("invoice request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toInvoiceResponse(invoice *model.Invoice, withLines bool) invoiceResponse {
	resp := invoiceResponse{
		ID:            invoice.ID,
		SupplierName:  invoice.SupplierName,
		SupplierVATID: invoice.SupplierVATID,
		CustomerName:  invoice.CustomerName,
		ReceiptNumber: invoice.ReceiptNumber,
		IssueDate:     invoice.IssueDate.Format("2006-01-02"),
		Currency:      invoice.Currency,
		NetTotal:      invoice.NetTotal,
		VATTotal:      invoice.VATTotal,
		Total:         invoice.Total,
		Status:        string(invoice.Status),
		VoidReason:    invoice.VoidReason,
		CreatedAt:     invoice.CreatedAt,
	}
	if withLines {
		for _, line := range invoice.Lines {
			resp.Lines = append(resp.Lines, lineItemResponse{
				LineNo:      line.LineNo,
				Description: line.Description,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				VATRate:     line.VATRate,
				Category:    line.Category,
				NetAmount:   line.NetAmount,
				VATAmount:   line.VATAmount,
				GrossAmount: line.GrossAmount,
			})
		}
	}
	return resp
}

func parseStatus(raw string) (model.InvoiceStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ISSUED":
		return model.InvoiceStatusIssued, nil
	case "VOID":
		return model.InvoiceStatusVoid, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
