package handlers

import (
	"log"

	"billingportal/internal/common"
	"billingportal/internal/middleware"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandlers emails quotes and invoices to customers
type AdminHandlers struct {
	adminService services.AdminService
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(adminService services.AdminService) *AdminHandlers {
	return &AdminHandlers{adminService: adminService}
}

// SendQuote handles POST /api/admin/quotes/:id/send
//
//	@Summary	Email a quote link to its customer
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Quote ID"
//	@Success	200	{object}	services.SendResult
//	@Failure	400	{object}	common.ErrorBody
//	@Failure	404	{object}	common.ErrorBody
//	@Router		/api/admin/quotes/{id}/send [post]
func (h *AdminHandlers) SendQuote(c echo.Context) error {
	quoteID, err := common.ValidateUUID(c.Param("id"), "quote_id")
	if err != nil {
		return fail(c, err)
	}
	h.audit(c, "send quote", quoteID.String())
	result, err := h.adminService.SendQuote(c.Request().Context(), quoteID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// SendInvoice handles POST /api/admin/invoices/:id/send
func (h *AdminHandlers) SendInvoice(c echo.Context) error {
	invoiceID, err := common.ValidateUUID(c.Param("id"), "invoice_id")
	if err != nil {
		return fail(c, err)
	}
	h.audit(c, "send invoice", invoiceID.String())
	result, err := h.adminService.SendInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

func (h *AdminHandlers) audit(c echo.Context, action, id string) {
	who := "unknown"
	if claims, ok := middleware.AdminFromContext(c); ok {
		who = claims.Subject
		if claims.Email != "" {
			who = claims.Email
		}
	}
	log.Printf("[ADMIN] %s: %s %s", who, action, id)
}
