package services

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

type SendResult struct {
	Success bool   `json:"success"`
	EmailID string `json:"email_id"`
}

// AdminService emails quotes and invoices to customers on behalf of staff
type AdminService interface {
	SendQuote(ctx context.Context, quoteID uuid.UUID) (*SendResult, error)
	SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*SendResult, error)
}

type adminService struct {
	quotes        repositories.QuoteRepository
	invoices      repositories.InvoiceRepository
	customers     repositories.CustomerRepository
	notifications NotificationService
	siteURL       string
}

func NewAdminService(
	quotes repositories.QuoteRepository,
	invoices repositories.InvoiceRepository,
	customers repositories.CustomerRepository,
	notifications NotificationService,
	siteURL string,
) AdminService {
	return &adminService{
		quotes:        quotes,
		invoices:      invoices,
		customers:     customers,
		notifications: notifications,
		siteURL:       siteURL,
	}
}

func (s *adminService) customer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewUpstreamError("load customer", err)
	}
	if customer == nil {
		return nil, common.NewNotFoundError("Customer")
	}
	return customer, nil
}

func (s *adminService) SendQuote(ctx context.Context, quoteID uuid.UUID) (*SendResult, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, common.NewUpstreamError("load quote", err)
	}
	if quote == nil {
		return nil, common.NewNotFoundError("Quote")
	}

	// Sent and viewed quotes are re-sent without a status change
	status := quote.Status
	if status == models.QuoteDraft {
		if status, err = status.TransitionTo(models.QuoteSent); err != nil {
			return nil, err
		}
	} else if !status.AcceptsPayment() {
		return nil, common.NewStateError(fmt.Sprintf("quote in status %s cannot be sent", status))
	}

	customer, err := s.customer(ctx, quote.CustomerID)
	if err != nil {
		return nil, err
	}

	token := common.SafeString(quote.AccessToken)
	if token == "" {
		if token, err = generateToken(); err != nil {
			return nil, common.NewInternalError(err)
		}
	}

	link := fmt.Sprintf("%s/quote.html?token=%s", s.siteURL, url.QueryEscape(token))
	emailID, err := s.notifications.SendQuote(ctx, customer, quote, link)
	if err != nil {
		return nil, common.NewUpstreamError("send quote email", err)
	}

	if err := s.quotes.MarkSent(ctx, quote.ID, status, token); err != nil {
		return nil, common.NewUpstreamError("update quote", err)
	}
	log.Printf("Quote %s sent to %s (email %s)", quote.QuoteNumber, customer.Email, emailID)
	return &SendResult{Success: true, EmailID: emailID}, nil
}

func (s *adminService) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*SendResult, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoice", err)
	}
	if invoice == nil {
		return nil, common.NewNotFoundError("Invoice")
	}

	status := invoice.Status
	if status == models.InvoiceDraft {
		if status, err = status.TransitionTo(models.InvoiceSent); err != nil {
			return nil, err
		}
	}

	customer, err := s.customer(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/portal/invoice.html?id=%s", s.siteURL, invoice.ID)
	emailID, err := s.notifications.SendInvoice(ctx, customer, invoice, link)
	if err != nil {
		return nil, common.NewUpstreamError("send invoice email", err)
	}

	if err := s.invoices.MarkSent(ctx, invoice.ID, status); err != nil {
		return nil, common.NewUpstreamError("update invoice", err)
	}
	log.Printf("Invoice %s sent to %s (email %s)", invoice.InvoiceNumber, customer.Email, emailID)
	return &SendResult{Success: true, EmailID: emailID}, nil
}
