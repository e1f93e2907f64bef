package handlers

import (
	"billingportal/internal/common"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

// CheckoutHandlers starts payments for signed-in customers
type CheckoutHandlers struct {
	checkoutService services.CheckoutService
}

// NewCheckoutHandlers creates a new checkout handlers instance
func NewCheckoutHandlers(checkoutService services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkoutService: checkoutService}
}

// CheckoutRequest is the body of a portal checkout
type CheckoutRequest struct {
	QuoteID         string   `json:"quote_id"`
	SelectedOptions []string `json:"selected_options"`
	PaymentAmount   *float64 `json:"payment_amount"`
}

// PaymentIntentRequest is the body of an invoice payment; amount is in cents
type PaymentIntentRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"`
}

// Checkout handles POST /api/portal/checkout
//
//	@Summary	Start a hosted checkout for a quote
//	@Tags		portal
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CheckoutRequest	true	"Checkout request"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	common.ErrorBody
//	@Failure	404		{object}	common.ErrorBody
//	@Router		/api/portal/checkout [post]
func (h *CheckoutHandlers) Checkout(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	var req CheckoutRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	quoteID, err := common.ValidateUUID(req.QuoteID, "quote_id")
	if err != nil {
		return fail(c, err)
	}
	selected, err := common.ValidateUUIDList(req.SelectedOptions, "selected_options")
	if err != nil {
		return fail(c, err)
	}

	result, err := h.checkoutService.StartCheckout(c.Request().Context(), services.CheckoutRequest{
		CustomerID:      customerID,
		QuoteID:         quoteID,
		SelectedOptions: selected,
		PaymentAmount:   req.PaymentAmount,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, map[string]string{"checkout_url": result.URL})
}

// CreatePaymentIntent handles POST /api/portal/payment-intents
func (h *CheckoutHandlers) CreatePaymentIntent(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	var req PaymentIntentRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.InvoiceID == "" || req.Amount == 0 {
		return fail(c, common.NewValidationError("Invoice ID and amount required"))
	}
	invoiceID, err := common.ValidateUUID(req.InvoiceID, "invoice_id")
	if err != nil {
		return fail(c, err)
	}

	result, err := h.checkoutService.CreateInvoicePayment(c.Request().Context(), customerID, invoiceID, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}
