package handlers

import (
	"billingportal/internal/middleware"

	_ "billingportal/docs"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Router holds every handler group and the auth middleware guarding them
type Router struct {
	Auth     *AuthHandlers
	Portal   *PortalHandlers
	Public   *PublicHandlers
	Checkout *CheckoutHandlers
	Invoices *InvoiceHandlers
	Uploads  *UploadHandlers
	Webhooks *WebhookHandlers
	Admin    *AdminHandlers
	Health   *HealthHandlers

	SessionAuth echo.MiddlewareFunc
	AdminAuth   echo.MiddlewareFunc
	Version     *middleware.VersionMiddleware
}

// Register mounts all routes on e
func (r *Router) Register(e *echo.Echo) {
	// Health endpoints (no auth required)
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.Use(r.Version.VersionHeader())

	auth := api.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.GET("/verify", r.Auth.Verify)
	auth.POST("/logout", r.Auth.Logout, r.SessionAuth)

	portal := api.Group("/portal", r.SessionAuth)
	portal.GET("/data", r.Portal.Dashboard)
	portal.GET("/quotes", r.Portal.ListQuotes)
	portal.GET("/quotes/:id", r.Portal.GetQuote)
	portal.POST("/quotes/:id/view", r.Portal.MarkViewed)
	portal.POST("/quotes/:id/selection", r.Portal.SetSelection)
	portal.GET("/stripe-config", r.Portal.StripeConfig)
	portal.POST("/checkout", r.Checkout.Checkout)
	portal.POST("/payment-intents", r.Checkout.CreatePaymentIntent)
	portal.GET("/invoices", r.Invoices.ListInvoices)
	portal.GET("/invoices/:id", r.Invoices.GetInvoice)
	portal.GET("/invoices/:id/pdf", r.Invoices.DownloadPDF)
	portal.GET("/payments", r.Invoices.ListPayments)
	portal.GET("/uploads", r.Uploads.ListUploads)
	portal.POST("/uploads", r.Uploads.Upload)
	portal.GET("/files", r.Uploads.ListFiles)

	public := api.Group("/public")
	public.GET("/quote", r.Public.GetQuote)
	public.POST("/quote/selection", r.Public.SetSelection)
	public.POST("/checkout", r.Public.Checkout)

	api.POST("/webhooks/stripe", r.Webhooks.StripeWebhook)

	admin := api.Group("/admin", r.AdminAuth)
	admin.POST("/quotes/:id/send", r.Admin.SendQuote)
	admin.POST("/invoices/:id/send", r.Admin.SendInvoice)
}
