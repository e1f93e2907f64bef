package services

import (
	"context"
	"io"
	"time"

	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAuthTokenRepository struct {
	mock.Mock
}

func (m *MockAuthTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthTokenRepository) GetByHash(ctx context.Context, tokenHash string, tokenType models.TokenType) (*models.AuthToken, error) {
	args := m.Called(ctx, tokenHash, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthToken), args.Error(1)
}

func (m *MockAuthTokenRepository) ConsumeMagicLink(ctx context.Context, tokenHash string, now time.Time) error {
	return m.Called(ctx, tokenHash, now).Error(0)
}

func (m *MockAuthTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockAuthTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Log(ctx context.Context, entry *models.ActivityLog) error {
	return m.Called(ctx, entry).Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) SetSession(ctx context.Context, tokenHash string, customerID uuid.UUID, ttl time.Duration) error {
	return m.Called(ctx, tokenHash, customerID, ttl).Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, tokenHash string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendMagicLink(ctx context.Context, customer *models.Customer, link string) error {
	return m.Called(ctx, customer, link).Error(0)
}

func (m *MockNotificationService) SendQuoteAccepted(ctx context.Context, customer *models.Customer, quote *models.Quote, invoice *models.Invoice, payment *models.Payment) {
	m.Called(ctx, customer, quote, invoice, payment)
}

func (m *MockNotificationService) SendPaymentReceived(ctx context.Context, customer *models.Customer, invoice *models.Invoice, payment *models.Payment) {
	m.Called(ctx, customer, invoice, payment)
}

func (m *MockNotificationService) SendUploadNotice(ctx context.Context, customer *models.Customer, upload *models.CustomerUpload) {
	m.Called(ctx, customer, upload)
}

func (m *MockNotificationService) SendQuote(ctx context.Context, customer *models.Customer, quote *models.Quote, link string) (string, error) {
	args := m.Called(ctx, customer, quote, link)
	return args.String(0), args.Error(1)
}

func (m *MockNotificationService) SendInvoice(ctx context.Context, customer *models.Customer, invoice *models.Invoice, link string) (string, error) {
	args := m.Called(ctx, customer, invoice, link)
	return args.String(0), args.Error(1)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) quote(args mock.Arguments) (*models.Quote, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return m.quote(m.Called(ctx, id))
}

func (m *MockQuoteRepository) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Quote, error) {
	return m.quote(m.Called(ctx, customerID, id))
}

func (m *MockQuoteRepository) GetByAccessToken(ctx context.Context, accessToken string) (*models.Quote, error) {
	return m.quote(m.Called(ctx, accessToken))
}

func (m *MockQuoteRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockQuoteRepository) MarkViewed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuoteRepository) MarkSent(ctx context.Context, id uuid.UUID, status models.QuoteStatus, accessToken string) error {
	return m.Called(ctx, id, status, accessToken).Error(0)
}

func (m *MockQuoteRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuoteRepository) ListLineItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteLineItem, error) {
	args := m.Called(ctx, quoteID)
	return args.Get(0).([]models.QuoteLineItem), args.Error(1)
}

func (m *MockQuoteRepository) GetLineItem(ctx context.Context, quoteID, itemID uuid.UUID) (*models.QuoteLineItem, error) {
	args := m.Called(ctx, quoteID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuoteLineItem), args.Error(1)
}

func (m *MockQuoteRepository) SetItemSelected(ctx context.Context, quoteID, itemID uuid.UUID, selected bool) error {
	return m.Called(ctx, quoteID, itemID, selected).Error(0)
}

func (m *MockQuoteRepository) ReplaceSelection(ctx context.Context, quoteID uuid.UUID, selected []uuid.UUID) error {
	return m.Called(ctx, quoteID, selected).Error(0)
}

func (m *MockQuoteRepository) ListAttachments(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteAttachment, error) {
	args := m.Called(ctx, quoteID)
	return args.Get(0).([]models.QuoteAttachment), args.Error(1)
}

func (m *MockQuoteRepository) ListCustomerFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.CustomerFile), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]models.InvoiceLineItem), args.Error(1)
}

func (m *MockInvoiceRepository) MarkSent(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) ListSucceededForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.PaymentHistoryEntry), args.Error(1)
}

type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) AcceptQuote(ctx context.Context, p repositories.AcceptQuoteParams) (*repositories.AcceptQuoteResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.AcceptQuoteResult), args.Error(1)
}

func (m *MockBillingRepository) SettlePayment(ctx context.Context, paymentIntentID string, amount float64, paidAt time.Time) (*repositories.SettlementResult, error) {
	args := m.Called(ctx, paymentIntentID, amount, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SettlementResult), args.Error(1)
}

func (m *MockBillingRepository) FailPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.Bool(0), args.Error(1)
}

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentProcessor) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

func (m *MockPaymentProcessor) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, objectKey string, reader io.Reader, objectSize int64, contentType string) error {
	return m.Called(ctx, objectKey, reader, objectSize, contentType).Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, upload *models.CustomerUpload) error {
	return m.Called(ctx, upload).Error(0)
}

func (m *MockUploadRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.CustomerUpload), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Enqueue(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockEmailDispatcher struct {
	mock.Mock
}

func (m *MockEmailDispatcher) Dispatch(ctx context.Context, email models.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
