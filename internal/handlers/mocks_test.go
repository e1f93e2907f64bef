package handlers

import (
	"context"

	"billingportal/internal/models"
	"billingportal/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) RequestMagicLink(ctx context.Context, email string, meta models.RequestMeta) error {
	return m.Called(ctx, email, meta).Error(0)
}

func (m *MockAuthService) VerifyMagicLink(ctx context.Context, token string, meta models.RequestMeta) (*services.Session, error) {
	args := m.Called(ctx, token, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPortalService struct{ mock.Mock }

func (m *MockPortalService) Dashboard(ctx context.Context, customerID uuid.UUID) (*models.Dashboard, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockPortalService) ListQuotes(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockPortalService) GetQuote(ctx context.Context, customerID, quoteID uuid.UUID) (*models.QuoteDetail, error) {
	args := m.Called(ctx, customerID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuoteDetail), args.Error(1)
}

func (m *MockPortalService) MarkQuoteViewed(ctx context.Context, customerID, quoteID uuid.UUID, meta models.RequestMeta) error {
	return m.Called(ctx, customerID, quoteID, meta).Error(0)
}

func (m *MockPortalService) SetOptionSelected(ctx context.Context, customerID, quoteID, itemID uuid.UUID, selected bool) (*services.SelectionResult, error) {
	args := m.Called(ctx, customerID, quoteID, itemID, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SelectionResult), args.Error(1)
}

func (m *MockPortalService) GetPublicQuote(ctx context.Context, accessToken string) (*models.QuoteDetail, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuoteDetail), args.Error(1)
}

func (m *MockPortalService) SetPublicOptionSelected(ctx context.Context, accessToken string, itemID uuid.UUID, selected bool) (*services.SelectionResult, error) {
	args := m.Called(ctx, accessToken, itemID, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SelectionResult), args.Error(1)
}

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) StartCheckout(ctx context.Context, req services.CheckoutRequest) (*services.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutResult), args.Error(1)
}

func (m *MockCheckoutService) CreateInvoicePayment(ctx context.Context, customerID, invoiceID uuid.UUID, amountCents int64) (*services.InvoicePaymentResult, error) {
	args := m.Called(ctx, customerID, invoiceID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InvoicePaymentResult), args.Error(1)
}

type MockInvoiceService struct{ mock.Mock }

func (m *MockInvoiceService) ListInvoices(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, customerID, invoiceID uuid.UUID) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, customerID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) ListPayments(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentHistoryEntry), args.Error(1)
}

func (m *MockInvoiceService) RenderPDF(ctx context.Context, customerID, invoiceID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, customerID, invoiceID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockUploadService struct{ mock.Mock }

func (m *MockUploadService) Upload(ctx context.Context, customerID uuid.UUID, req services.UploadRequest, meta models.RequestMeta) (*models.CustomerUpload, error) {
	args := m.Called(ctx, customerID, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerUpload), args.Error(1)
}

func (m *MockUploadService) ListUploads(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerUpload), args.Error(1)
}

func (m *MockUploadService) ListFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerFile), args.Error(1)
}

type MockAdminService struct{ mock.Mock }

func (m *MockAdminService) SendQuote(ctx context.Context, quoteID uuid.UUID) (*services.SendResult, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SendResult), args.Error(1)
}

func (m *MockAdminService) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*services.SendResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SendResult), args.Error(1)
}

type MockReconciler struct{ mock.Mock }

func (m *MockReconciler) HandleEvent(ctx context.Context, event *services.WebhookEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockProcessor struct{ mock.Mock }

func (m *MockProcessor) CreateCheckoutSession(ctx context.Context, req services.CheckoutSessionRequest) (*services.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSession), args.Error(1)
}

func (m *MockProcessor) CreatePaymentIntent(ctx context.Context, req services.PaymentIntentRequest) (*services.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentIntent), args.Error(1)
}

func (m *MockProcessor) ParseWebhook(payload []byte, signatureHeader string) (*services.WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WebhookEvent), args.Error(1)
}
