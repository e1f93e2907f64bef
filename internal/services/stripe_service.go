package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// WebhookEventKind is the processor-neutral classification of a webhook
type WebhookEventKind string

const (
	EventCheckoutCompleted WebhookEventKind = "checkout_completed"
	EventPaymentSucceeded  WebhookEventKind = "payment_succeeded"
	EventPaymentFailed     WebhookEventKind = "payment_failed"
	EventIgnored           WebhookEventKind = "ignored"
)

// CheckoutCompletion is the payload of a completed hosted checkout
type CheckoutCompletion struct {
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	Metadata        map[string]string
}

// IntentOutcome is the payload of a payment intent result
type IntentOutcome struct {
	PaymentIntentID string
	Amount          int64
	Metadata        map[string]string
	FailureMessage  string
}

// WebhookEvent is a verified processor event
type WebhookEvent struct {
	ID       string
	Type     string
	Kind     WebhookEventKind
	Checkout *CheckoutCompletion
	Intent   *IntentOutcome
}

// CheckoutSessionRequest describes a hosted checkout page to create
type CheckoutSessionRequest struct {
	ProductName    string
	Description    string
	AmountCents    int64
	Currency       string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentIntentRequest describes a direct card payment against an invoice
type PaymentIntentRequest struct {
	AmountCents    int64
	Currency       string
	ReceiptEmail   string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentProcessor is the external card processor
type PaymentProcessor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	// ParseWebhook verifies the signature header over the raw payload and decodes the event
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type stripeProcessor struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProcessor(secretKey, webhookSecret string) PaymentProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeProcessor{api: api, webhookSecret: webhookSecret}
}

func (s *stripeProcessor) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *stripeProcessor) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *stripeProcessor) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeStripeEvent(event)
}

func decodeStripeEvent(event stripe.Event) (*WebhookEvent, error) {
	out := &WebhookEvent{ID: event.ID, Type: string(event.Type), Kind: EventIgnored}
	if event.Data == nil {
		return out, nil
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		completion := &CheckoutCompletion{
			SessionID:   sess.ID,
			AmountTotal: sess.AmountTotal,
			Metadata:    sess.Metadata,
		}
		if sess.PaymentIntent != nil {
			completion.PaymentIntentID = sess.PaymentIntent.ID
		}
		out.Kind = EventCheckoutCompleted
		out.Checkout = completion

	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		outcome := &IntentOutcome{
			PaymentIntentID: pi.ID,
			Amount:          pi.Amount,
			Metadata:        pi.Metadata,
		}
		if pi.LastPaymentError != nil {
			outcome.FailureMessage = pi.LastPaymentError.Msg
		}
		out.Intent = outcome
		if event.Type == stripe.EventTypePaymentIntentSucceeded {
			out.Kind = EventPaymentSucceeded
		} else {
			out.Kind = EventPaymentFailed
		}
	}

	return out, nil
}
