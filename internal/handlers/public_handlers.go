package handlers

import (
	"billingportal/internal/common"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

// PublicHandlers serves the emailed quote link, authenticated by access token
type PublicHandlers struct {
	portalService   services.PortalService
	checkoutService services.CheckoutService
}

// NewPublicHandlers creates a new public handlers instance
func NewPublicHandlers(portalService services.PortalService, checkoutService services.CheckoutService) *PublicHandlers {
	return &PublicHandlers{portalService: portalService, checkoutService: checkoutService}
}

// PublicSelectionRequest toggles an optional item through the access token
type PublicSelectionRequest struct {
	Token      string `json:"token"`
	ItemID     string `json:"item_id"`
	IsSelected bool   `json:"is_selected"`
}

// PublicCheckoutRequest starts checkout through the access token
type PublicCheckoutRequest struct {
	Token           string   `json:"token"`
	SelectedOptions []string `json:"selected_options"`
	PaymentAmount   *float64 `json:"payment_amount"`
}

// GetQuote handles GET /api/public/quote?token=
//
//	@Summary	Fetch a quote by access token
//	@Tags		public
//	@Produce	json
//	@Param		token	query		string	true	"Quote access token"
//	@Success	200		{object}	QuoteResponse
//	@Failure	404		{object}	common.ErrorBody
//	@Failure	410		{object}	common.ErrorBody
//	@Router		/api/public/quote [get]
func (h *PublicHandlers) GetQuote(c echo.Context) error {
	token := c.QueryParam("token")
	if err := common.ValidateRequiredString(token, "token"); err != nil {
		return fail(c, err)
	}
	detail, err := h.portalService.GetPublicQuote(c.Request().Context(), token)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, newQuoteResponse(detail))
}

// SetSelection handles POST /api/public/quote/selection
func (h *PublicHandlers) SetSelection(c echo.Context) error {
	var req PublicSelectionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Token == "" || req.ItemID == "" {
		return fail(c, common.NewValidationError("Token and item ID required"))
	}
	itemID, err := common.ValidateUUID(req.ItemID, "item_id")
	if err != nil {
		return fail(c, err)
	}
	result, err := h.portalService.SetPublicOptionSelected(c.Request().Context(), req.Token, itemID, req.IsSelected)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// Checkout handles POST /api/public/checkout
//
//	@Summary	Start a hosted checkout from the emailed quote link
//	@Tags		public
//	@Accept		json
//	@Produce	json
//	@Param		body	body		PublicCheckoutRequest	true	"Checkout request"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	common.ErrorBody
//	@Failure	401		{object}	common.ErrorBody
//	@Router		/api/public/checkout [post]
func (h *PublicHandlers) Checkout(c echo.Context) error {
	var req PublicCheckoutRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Token == "" {
		return fail(c, common.NewValidationError("Access token required"))
	}
	selected, err := common.ValidateUUIDList(req.SelectedOptions, "selected_options")
	if err != nil {
		return fail(c, err)
	}
	result, err := h.checkoutService.StartCheckout(c.Request().Context(), services.CheckoutRequest{
		AccessToken:     req.Token,
		SelectedOptions: selected,
		PaymentAmount:   req.PaymentAmount,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, map[string]string{"url": result.URL})
}
