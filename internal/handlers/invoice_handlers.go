package handlers

import (
	"fmt"
	"net/http"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices and payments
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService}
}

// ListInvoices handles GET /api/portal/invoices
//
//	@Summary	Invoices and succeeded payments
//	@Tags		portal
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/api/portal/invoices [get]
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}

	invoices, err := h.invoiceService.ListInvoices(ctx, customerID)
	if err != nil {
		return fail(c, err)
	}
	payments, err := h.invoiceService.ListPayments(ctx, customerID)
	if err != nil {
		return fail(c, err)
	}
	if payments == nil {
		payments = []models.PaymentHistoryEntry{}
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return ok(c, map[string]any{"invoices": invoices, "payments": payments})
}

// GetInvoice handles GET /api/portal/invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	invoiceID, err := common.ValidateUUID(c.Param("id"), "invoice_id")
	if err != nil {
		return fail(c, err)
	}
	detail, err := h.invoiceService.GetInvoice(c.Request().Context(), customerID, invoiceID)
	if err != nil {
		return fail(c, err)
	}
	items := detail.LineItems
	if items == nil {
		items = []models.InvoiceLineItem{}
	}
	return ok(c, map[string]any{"invoice": detail.Invoice, "line_items": items})
}

// ListPayments handles GET /api/portal/payments
func (h *InvoiceHandlers) ListPayments(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	payments, err := h.invoiceService.ListPayments(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	if payments == nil {
		payments = []models.PaymentHistoryEntry{}
	}
	return ok(c, map[string]any{"payments": payments})
}

// DownloadPDF handles GET /api/portal/invoices/:id/pdf
func (h *InvoiceHandlers) DownloadPDF(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	invoiceID, err := common.ValidateUUID(c.Param("id"), "invoice_id")
	if err != nil {
		return fail(c, err)
	}

	pdf, filename, err := h.invoiceService.RenderPDF(c.Request().Context(), customerID, invoiceID)
	if err != nil {
		return fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
