package services

import (
	"bytes"
	"context"
	"fmt"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// InvoiceService exposes a customer's invoices and payment history
type InvoiceService interface {
	ListInvoices(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, customerID, invoiceID uuid.UUID) (*models.InvoiceDetail, error)
	ListPayments(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error)
	RenderPDF(ctx context.Context, customerID, invoiceID uuid.UUID) ([]byte, string, error)
}

type invoiceService struct {
	invoices  repositories.InvoiceRepository
	payments  repositories.PaymentRepository
	customers repositories.CustomerRepository
}

func NewInvoiceService(invoices repositories.InvoiceRepository, payments repositories.PaymentRepository, customers repositories.CustomerRepository) InvoiceService {
	return &invoiceService{invoices: invoices, payments: payments, customers: customers}
}

func (s *invoiceService) ListInvoices(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error) {
	invoices, err := s.invoices.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoices", err)
	}
	return invoices, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, customerID, invoiceID uuid.UUID) (*models.InvoiceDetail, error) {
	invoice, err := s.invoices.GetForCustomer(ctx, customerID, invoiceID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoice", err)
	}
	if invoice == nil {
		return nil, common.NewNotFoundError("Invoice")
	}
	items, err := s.invoices.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoice items", err)
	}
	return &models.InvoiceDetail{Invoice: invoice, LineItems: items}, nil
}

func (s *invoiceService) ListPayments(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error) {
	payments, err := s.payments.ListSucceededForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load payments", err)
	}
	return payments, nil
}

// RenderPDF returns the invoice as a PDF along with a download filename
func (s *invoiceService) RenderPDF(ctx context.Context, customerID, invoiceID uuid.UUID) ([]byte, string, error) {
	detail, err := s.GetInvoice(ctx, customerID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, "", common.NewUpstreamError("load customer", err)
	}
	if customer == nil {
		return nil, "", common.NewNotFoundError("Customer")
	}

	data, err := renderInvoicePDF(detail, customer)
	if err != nil {
		return nil, "", common.NewInternalError(err)
	}
	return data, fmt.Sprintf("%s.pdf", detail.InvoiceNumber), nil
}

func renderInvoicePDF(detail *models.InvoiceDetail, customer *models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Number: %s", detail.InvoiceNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Date: %s", detail.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(8)
	if detail.DueDate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", detail.DueDate.Format("02-Jan-2006")))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Project: %s", detail.Title))
	pdf.Ln(13)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, customer.Name)
	pdf.Ln(6)
	pdf.Cell(0, 6, customer.Email)
	pdf.Ln(10)

	headers := []string{"Description", "Qty", "Rate", "Amount"}
	colWidths := []float64{90, 20, 30, 30}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, item := range detail.LineItems {
		pdf.CellFormat(colWidths[0], 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%g", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, money(item.LineTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(4)

	labelWidth := colWidths[0] + colWidths[1] + colWidths[2]
	totals := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal", detail.Subtotal, false},
		{fmt.Sprintf("Tax (%g%%)", detail.TaxRate*100), detail.TaxAmount, false},
		{"Total", detail.Total, true},
		{"Amount Paid", detail.AmountPaid, false},
		{"Balance Due", detail.AmountDue, true},
	}
	for _, row := range totals {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(labelWidth, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, money(row.value), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
