package services

import (
	"context"
	"log"
	"time"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/pricing"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

// SelectionResult is the quote's recomputed pricing after an option toggle
type SelectionResult struct {
	ItemID         uuid.UUID `json:"item_id"`
	IsSelected     bool      `json:"is_selected"`
	Subtotal       float64   `json:"subtotal"`
	Tax            float64   `json:"tax"`
	Total          float64   `json:"total"`
	MinimumPayment float64   `json:"minimum_payment"`
}

// PortalService serves the customer's quotes and dashboard
type PortalService interface {
	Dashboard(ctx context.Context, customerID uuid.UUID) (*models.Dashboard, error)
	ListQuotes(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error)
	GetQuote(ctx context.Context, customerID, quoteID uuid.UUID) (*models.QuoteDetail, error)
	MarkQuoteViewed(ctx context.Context, customerID, quoteID uuid.UUID, meta models.RequestMeta) error
	SetOptionSelected(ctx context.Context, customerID, quoteID, itemID uuid.UUID, selected bool) (*SelectionResult, error)

	// Access-token variants used by the emailed quote link
	GetPublicQuote(ctx context.Context, accessToken string) (*models.QuoteDetail, error)
	SetPublicOptionSelected(ctx context.Context, accessToken string, itemID uuid.UUID, selected bool) (*SelectionResult, error)
}

type portalService struct {
	customers repositories.CustomerRepository
	quotes    repositories.QuoteRepository
	invoices  repositories.InvoiceRepository
	payments  repositories.PaymentRepository
	activity  repositories.ActivityRepository
	now       func() time.Time
}

func NewPortalService(
	customers repositories.CustomerRepository,
	quotes repositories.QuoteRepository,
	invoices repositories.InvoiceRepository,
	payments repositories.PaymentRepository,
	activity repositories.ActivityRepository,
) PortalService {
	return &portalService{
		customers: customers,
		quotes:    quotes,
		invoices:  invoices,
		payments:  payments,
		activity:  activity,
		now:       time.Now,
	}
}

func (s *portalService) Dashboard(ctx context.Context, customerID uuid.UUID) (*models.Dashboard, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load customer", err)
	}
	if customer == nil {
		return nil, common.NewNotFoundError("Customer")
	}

	quotes, err := s.quotes.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load quotes", err)
	}
	invoices, err := s.invoices.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoices", err)
	}
	payments, err := s.payments.ListSucceededForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load payments", err)
	}

	return &models.Dashboard{
		Customer: customer.Summary(),
		Quotes:   quotes,
		Invoices: invoices,
		Payments: payments,
	}, nil
}

func (s *portalService) ListQuotes(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error) {
	quotes, err := s.quotes.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load quotes", err)
	}
	return quotes, nil
}

func (s *portalService) ownedQuote(ctx context.Context, customerID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.quotes.GetForCustomer(ctx, customerID, quoteID)
	if err != nil {
		return nil, common.NewUpstreamError("load quote", err)
	}
	if quote == nil {
		return nil, common.NewNotFoundError("Quote")
	}
	return quote, nil
}

func (s *portalService) detail(ctx context.Context, quote *models.Quote) (*models.QuoteDetail, error) {
	items, err := s.quotes.ListLineItems(ctx, quote.ID)
	if err != nil {
		return nil, common.NewUpstreamError("load line items", err)
	}
	attachments, err := s.quotes.ListAttachments(ctx, quote.ID)
	if err != nil {
		return nil, common.NewUpstreamError("load attachments", err)
	}
	return &models.QuoteDetail{Quote: quote, LineItems: items, Attachments: attachments}, nil
}

func (s *portalService) GetQuote(ctx context.Context, customerID, quoteID uuid.UUID) (*models.QuoteDetail, error) {
	quote, err := s.ownedQuote(ctx, customerID, quoteID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, quote)
}

func (s *portalService) MarkQuoteViewed(ctx context.Context, customerID, quoteID uuid.UUID, meta models.RequestMeta) error {
	quote, err := s.ownedQuote(ctx, customerID, quoteID)
	if err != nil {
		return err
	}
	if !quote.Status.CanTransitionTo(models.QuoteViewed) {
		return nil
	}

	changed, err := s.quotes.MarkViewed(ctx, quote.ID)
	if err != nil {
		return common.NewUpstreamError("mark quote viewed", err)
	}
	if changed {
		id := quote.ID
		if err := s.activity.Log(ctx, &models.ActivityLog{
			CustomerID:   customerID,
			QuoteID:      &id,
			ActivityType: models.ActivityQuoteViewed,
			Description:  "Viewed quote " + quote.QuoteNumber,
			IPAddress:    meta.IPAddress,
		}); err != nil {
			log.Printf("Failed to record quote view for %s: %v", quote.ID, err)
		}
	}
	return nil
}

func (s *portalService) SetOptionSelected(ctx context.Context, customerID, quoteID, itemID uuid.UUID, selected bool) (*SelectionResult, error) {
	quote, err := s.ownedQuote(ctx, customerID, quoteID)
	if err != nil {
		return nil, err
	}
	return s.setSelected(ctx, quote, itemID, selected)
}

func (s *portalService) publicQuote(ctx context.Context, accessToken string) (*models.Quote, error) {
	if accessToken == "" {
		return nil, nil
	}
	quote, err := s.quotes.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, common.NewUpstreamError("load quote", err)
	}
	if quote == nil || !quote.Status.IsCustomerVisible() {
		return nil, nil
	}
	return quote, nil
}

func (s *portalService) GetPublicQuote(ctx context.Context, accessToken string) (*models.QuoteDetail, error) {
	quote, err := s.publicQuote(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, common.NewNotFoundError("Quote")
	}
	if quote.Status == models.QuoteExpired || (quote.Status.AcceptsPayment() && quote.IsExpired(s.now())) {
		return nil, common.NewGoneError("This quote has expired")
	}

	if quote.Status.CanTransitionTo(models.QuoteViewed) {
		changed, err := s.quotes.MarkViewed(ctx, quote.ID)
		if err != nil {
			log.Printf("Failed to mark quote %s viewed: %v", quote.ID, err)
		} else if changed {
			quote.Status = models.QuoteViewed
		}
	}
	return s.detail(ctx, quote)
}

func (s *portalService) SetPublicOptionSelected(ctx context.Context, accessToken string, itemID uuid.UUID, selected bool) (*SelectionResult, error) {
	quote, err := s.publicQuote(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, common.NewAuthError("Invalid access token")
	}
	return s.setSelected(ctx, quote, itemID, selected)
}

func (s *portalService) setSelected(ctx context.Context, quote *models.Quote, itemID uuid.UUID, selected bool) (*SelectionResult, error) {
	if err := quote.CheckAcceptable(s.now()); err != nil {
		return nil, err
	}

	item, err := s.quotes.GetLineItem(ctx, quote.ID, itemID)
	if err != nil {
		return nil, common.NewUpstreamError("load line item", err)
	}
	if item == nil {
		return nil, common.NewNotFoundError("Line item")
	}
	if !item.IsOptional {
		return nil, common.NewValidationError("Only optional items can be selected or deselected")
	}

	if err := s.quotes.SetItemSelected(ctx, quote.ID, itemID, selected); err != nil {
		return nil, common.NewUpstreamError("update selection", err)
	}

	items, err := s.quotes.ListLineItems(ctx, quote.ID)
	if err != nil {
		return nil, common.NewUpstreamError("load line items", err)
	}
	totals, err := pricing.Compute(toPricingItems(items), depositPolicy(quote), quote.TaxRate, nil)
	if err != nil {
		return nil, pricingError(err)
	}

	return &SelectionResult{
		ItemID:         itemID,
		IsSelected:     selected,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		MinimumPayment: totals.MinimumPayment,
	}, nil
}
