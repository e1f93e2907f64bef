package handlers

import (
	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

// PortalHandlers serves the authenticated customer dashboard and quotes
type PortalHandlers struct {
	portalService  services.PortalService
	publishableKey string
}

// NewPortalHandlers creates a new portal handlers instance
func NewPortalHandlers(portalService services.PortalService, publishableKey string) *PortalHandlers {
	return &PortalHandlers{portalService: portalService, publishableKey: publishableKey}
}

// QuoteResponse is a quote with its line items and attachments
type QuoteResponse struct {
	Quote       *models.Quote            `json:"quote"`
	LineItems   []models.QuoteLineItem   `json:"line_items"`
	Attachments []models.QuoteAttachment `json:"attachments"`
}

func newQuoteResponse(detail *models.QuoteDetail) QuoteResponse {
	resp := QuoteResponse{
		Quote:       detail.Quote,
		LineItems:   detail.LineItems,
		Attachments: detail.Attachments,
	}
	if resp.LineItems == nil {
		resp.LineItems = []models.QuoteLineItem{}
	}
	if resp.Attachments == nil {
		resp.Attachments = []models.QuoteAttachment{}
	}
	return resp
}

// SelectionRequest toggles one optional line item on a quote
type SelectionRequest struct {
	ItemID   string `json:"item_id"`
	Selected bool   `json:"selected"`
}

// Dashboard handles GET /api/portal/data
//
//	@Summary	Customer dashboard
//	@Tags		portal
//	@Produce	json
//	@Success	200	{object}	models.Dashboard
//	@Failure	401	{object}	common.ErrorBody
//	@Router		/api/portal/data [get]
func (h *PortalHandlers) Dashboard(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	dashboard, err := h.portalService.Dashboard(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, dashboard)
}

// ListQuotes handles GET /api/portal/quotes
func (h *PortalHandlers) ListQuotes(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	quotes, err := h.portalService.ListQuotes(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	return ok(c, map[string]any{"quotes": quotes})
}

// GetQuote handles GET /api/portal/quotes/:id
func (h *PortalHandlers) GetQuote(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	quoteID, err := common.ValidateUUID(c.Param("id"), "quote_id")
	if err != nil {
		return fail(c, err)
	}
	detail, err := h.portalService.GetQuote(c.Request().Context(), customerID, quoteID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, newQuoteResponse(detail))
}

// MarkViewed handles POST /api/portal/quotes/:id/view
func (h *PortalHandlers) MarkViewed(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	quoteID, err := common.ValidateUUID(c.Param("id"), "quote_id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.portalService.MarkQuoteViewed(c.Request().Context(), customerID, quoteID, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, SuccessResponse{Success: true})
}

// SetSelection handles POST /api/portal/quotes/:id/selection
//
//	@Summary	Select or deselect an optional line item
//	@Tags		portal
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Quote ID"
//	@Param		body	body		SelectionRequest	true	"Selection"
//	@Success	200		{object}	services.SelectionResult
//	@Failure	400		{object}	common.ErrorBody
//	@Failure	404		{object}	common.ErrorBody
//	@Router		/api/portal/quotes/{id}/selection [post]
func (h *PortalHandlers) SetSelection(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	quoteID, err := common.ValidateUUID(c.Param("id"), "quote_id")
	if err != nil {
		return fail(c, err)
	}
	var req SelectionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	itemID, err := common.ValidateUUID(req.ItemID, "item_id")
	if err != nil {
		return fail(c, err)
	}
	result, err := h.portalService.SetOptionSelected(c.Request().Context(), customerID, quoteID, itemID, req.Selected)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// StripeConfig handles GET /api/portal/stripe-config
func (h *PortalHandlers) StripeConfig(c echo.Context) error {
	if _, err := currentCustomer(c); err != nil {
		return fail(c, err)
	}
	return ok(c, map[string]string{"publishableKey": h.publishableKey})
}
