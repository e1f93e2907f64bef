package handlers

import (
	"io"
	"log"
	"net/http"

	"billingportal/internal/common"
	"billingportal/internal/services"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 65536

// WebhookHandlers handles HTTP requests for payment processor webhooks
type WebhookHandlers struct {
	processor  services.PaymentProcessor
	reconciler services.ReconcilerService
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(processor services.PaymentProcessor, reconciler services.ReconcilerService) *WebhookHandlers {
	return &WebhookHandlers{processor: processor, reconciler: reconciler}
}

// StripeWebhook handles POST /api/webhooks/stripe
//
//	@Summary	Stripe event receiver
//	@Tags		webhooks
//	@Accept		json
//	@Produce	json
//	@Param		Stripe-Signature	header		string	true	"Signature header"
//	@Success	200					{object}	map[string]bool
//	@Failure	400					{object}	common.ErrorBody
//	@Failure	500					{object}	common.ErrorBody
//	@Router		/api/webhooks/stripe [post]
func (h *WebhookHandlers) StripeWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return fail(c, common.NewValidationError("Failed to read request body"))
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return fail(c, common.NewValidationError("Missing Stripe signature"))
	}

	event, err := h.processor.ParseWebhook(body, signature)
	if err != nil {
		log.Printf("[WEBHOOK] signature verification failed: %v", err)
		return fail(c, common.NewValidationError("Webhook Error: invalid signature"))
	}

	log.Printf("[WEBHOOK] received %s (%s)", event.ID, event.Kind)
	if err := h.reconciler.HandleEvent(c.Request().Context(), event); err != nil {
		log.Printf("[WEBHOOK] processing %s failed: %v", event.ID, err)
		return common.Render(c, common.ErrorResult{
			Kind:    common.KindInternal,
			Message: "Webhook handler failed",
			Status:  http.StatusInternalServerError,
		})
	}

	return ok(c, map[string]bool{"received": true})
}
