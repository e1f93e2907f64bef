package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"billingportal/internal/models"

	"github.com/shopspring/decimal"
)

// NotificationService renders and dispatches customer and staff emails
type NotificationService interface {
	SendMagicLink(ctx context.Context, customer *models.Customer, link string) error
	SendQuoteAccepted(ctx context.Context, customer *models.Customer, quote *models.Quote, invoice *models.Invoice, payment *models.Payment)
	SendPaymentReceived(ctx context.Context, customer *models.Customer, invoice *models.Invoice, payment *models.Payment)
	SendUploadNotice(ctx context.Context, customer *models.Customer, upload *models.CustomerUpload)
	SendQuote(ctx context.Context, customer *models.Customer, quote *models.Quote, link string) (string, error)
	SendInvoice(ctx context.Context, customer *models.Customer, invoice *models.Invoice, link string) (string, error)
}

const emailLayout = `<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 600px; margin: 0 auto;">
{{template "body" .}}
<p style="color: #6b7280; font-size: 12px; margin-top: 32px;">This message was sent by the customer portal.</p>
</body></html>`

var emailBodies = map[string]string{
	"magic_link": `<p>Hi {{.Name}},</p>
<p>Use the button below to sign in to your customer portal. The link expires in {{.TTL}} and can be used once.</p>
<p><a href="{{.Link}}" style="background: #2563eb; color: #fff; padding: 12px 20px; border-radius: 6px; text-decoration: none;">Sign in</a></p>
<p>If you did not request this, you can ignore this email.</p>`,

	"payment_customer": `<p>Hi {{.Name}},</p>
<p>We received your payment of <strong>${{.Amount}}</strong> for invoice {{.InvoiceNumber}} ({{.Title}}).</p>
<p>Invoice total: ${{.Total}}<br>Paid to date: ${{.Paid}}<br>Balance due: ${{.Due}}</p>
<p>Thank you!</p>`,

	"payment_admin": `<p>{{.Name}} ({{.Email}}) paid <strong>${{.Amount}}</strong> on invoice {{.InvoiceNumber}}.</p>
<p>{{if .QuoteNumber}}Quote {{.QuoteNumber}} was accepted. {{end}}Balance due: ${{.Due}}</p>`,

	"upload_admin": `<p>{{.Name}} ({{.Email}}) uploaded a reference photo.</p>
<p>File: {{.FileName}} ({{.FileType}}, {{.FileSize}} bytes){{if .Caption}}<br>Caption: {{.Caption}}{{end}}</p>`,

	"quote_sent": `<p>Hi {{.Name}},</p>
<p>Your quote {{.QuoteNumber}} ({{.Title}}) is ready. Total: <strong>${{.Total}}</strong>{{if .ExpiresAt}}, valid until {{.ExpiresAt}}{{end}}.</p>
<p><a href="{{.Link}}" style="background: #2563eb; color: #fff; padding: 12px 20px; border-radius: 6px; text-decoration: none;">View quote</a></p>`,

	"invoice_sent": `<p>Hi {{.Name}},</p>
<p>Invoice {{.InvoiceNumber}} ({{.Title}}) has been issued. Balance due: <strong>${{.Due}}</strong>{{if .DueDate}} by {{.DueDate}}{{end}}.</p>
<p><a href="{{.Link}}" style="background: #2563eb; color: #fff; padding: 12px 20px; border-radius: 6px; text-decoration: none;">View invoice</a></p>`,
}

type notificationService struct {
	dispatcher   EmailDispatcher
	adminEmail   string
	magicLinkTTL time.Duration
	templates    map[string]*template.Template
}

// NewNotificationService parses the email templates once
func NewNotificationService(dispatcher EmailDispatcher, adminEmail string, magicLinkTTL time.Duration) NotificationService {
	templates := make(map[string]*template.Template, len(emailBodies))
	for name, body := range emailBodies {
		t := template.Must(template.New(name).Parse(emailLayout))
		templates[name] = template.Must(t.New("body").Parse(body))
	}
	return &notificationService{
		dispatcher:   dispatcher,
		adminEmail:   adminEmail,
		magicLinkTTL: magicLinkTTL,
		templates:    templates,
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (s *notificationService) render(name string, data any) (string, error) {
	t, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *notificationService) send(ctx context.Context, to, subject, name string, data any) (string, error) {
	html, err := s.render(name, data)
	if err != nil {
		return "", err
	}
	return s.dispatcher.Dispatch(ctx, models.Email{To: []string{to}, Subject: subject, HTML: html})
}

func (s *notificationService) SendMagicLink(ctx context.Context, customer *models.Customer, link string) error {
	_, err := s.send(ctx, customer.Email, "Your sign-in link", "magic_link", map[string]any{
		"Name": customer.FirstName(),
		"Link": link,
		"TTL":  s.magicLinkTTL.String(),
	})
	return err
}

func (s *notificationService) SendQuoteAccepted(ctx context.Context, customer *models.Customer, quote *models.Quote, invoice *models.Invoice, payment *models.Payment) {
	data := paymentData(customer, invoice, payment)
	data["QuoteNumber"] = quote.QuoteNumber

	if _, err := s.send(ctx, customer.Email, fmt.Sprintf("Payment received - %s", invoice.InvoiceNumber), "payment_customer", data); err != nil {
		log.Printf("Failed to send payment confirmation for invoice %s: %v", invoice.ID, err)
	}
	s.notifyAdmin(ctx, fmt.Sprintf("Quote %s accepted by %s", quote.QuoteNumber, customer.Name), "payment_admin", data)
}

func (s *notificationService) SendPaymentReceived(ctx context.Context, customer *models.Customer, invoice *models.Invoice, payment *models.Payment) {
	data := paymentData(customer, invoice, payment)

	if _, err := s.send(ctx, customer.Email, fmt.Sprintf("Payment received - %s", invoice.InvoiceNumber), "payment_customer", data); err != nil {
		log.Printf("Failed to send payment confirmation for invoice %s: %v", invoice.ID, err)
	}
	s.notifyAdmin(ctx, fmt.Sprintf("Payment received on %s", invoice.InvoiceNumber), "payment_admin", data)
}

func (s *notificationService) SendUploadNotice(ctx context.Context, customer *models.Customer, upload *models.CustomerUpload) {
	caption := ""
	if upload.Caption != nil {
		caption = *upload.Caption
	}
	s.notifyAdmin(ctx, fmt.Sprintf("New photo from %s", customer.Name), "upload_admin", map[string]any{
		"Name":     customer.Name,
		"Email":    customer.Email,
		"FileName": upload.FileName,
		"FileType": upload.FileType,
		"FileSize": upload.FileSize,
		"Caption":  caption,
	})
}

func (s *notificationService) SendQuote(ctx context.Context, customer *models.Customer, quote *models.Quote, link string) (string, error) {
	expires := ""
	if quote.ExpiresAt != nil {
		expires = quote.ExpiresAt.Format("January 2, 2006")
	}
	return s.send(ctx, customer.Email, fmt.Sprintf("Your quote %s", quote.QuoteNumber), "quote_sent", map[string]any{
		"Name":        customer.FirstName(),
		"QuoteNumber": quote.QuoteNumber,
		"Title":       quote.Title,
		"Total":       money(quote.Total),
		"ExpiresAt":   expires,
		"Link":        link,
	})
}

func (s *notificationService) SendInvoice(ctx context.Context, customer *models.Customer, invoice *models.Invoice, link string) (string, error) {
	due := ""
	if invoice.DueDate != nil {
		due = invoice.DueDate.Format("January 2, 2006")
	}
	return s.send(ctx, customer.Email, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber), "invoice_sent", map[string]any{
		"Name":          customer.FirstName(),
		"InvoiceNumber": invoice.InvoiceNumber,
		"Title":         invoice.Title,
		"Due":           money(invoice.AmountDue),
		"DueDate":       due,
		"Link":          link,
	})
}

// notifyAdmin sends a staff email; failures are logged and never surfaced
func (s *notificationService) notifyAdmin(ctx context.Context, subject, name string, data any) {
	if s.adminEmail == "" {
		return
	}
	if _, err := s.send(ctx, s.adminEmail, subject, name, data); err != nil {
		log.Printf("Failed to send admin email %q: %v", subject, err)
	}
}

func paymentData(customer *models.Customer, invoice *models.Invoice, payment *models.Payment) map[string]any {
	return map[string]any{
		"Name":          customer.FirstName(),
		"Email":         customer.Email,
		"InvoiceNumber": invoice.InvoiceNumber,
		"Title":         invoice.Title,
		"Amount":        money(payment.Amount),
		"Total":         money(invoice.Total),
		"Paid":          money(invoice.AmountPaid),
		"Due":           money(invoice.AmountDue),
	}
}
