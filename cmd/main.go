package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"billingportal/internal/caching"
	"billingportal/internal/common"
	"billingportal/internal/config"
	"billingportal/internal/handlers"
	"billingportal/internal/jobs"
	"billingportal/internal/jobs/background"
	"billingportal/internal/middleware"
	"billingportal/internal/repositories"
	"billingportal/internal/services"
	"billingportal/pkg/database"
)

const version = "1.0.0"

var configPath string

//	@title			Billing Portal API
//	@version		1.0
//	@description	Customer billing portal: magic-link sessions, quotes, checkout, invoices and uploads.
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	root := &cobra.Command{
		Use:           "billingportal",
		Short:         "Customer billing portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.AddCommand(serveCmd(), migrateCmd(), sweepCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, background jobs and email worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if args[0] == "down" {
				return database.Rollback(cfg.Database.URL, steps)
			}
			return database.Migrate(cfg.Database.URL)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire overdue quotes and purge expired auth tokens once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := database.NewPool(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			rdb := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			defer rdb.Close()

			app := newApp(cfg, pool, caching.NewRedisCacheService(rdb), nil, services.NewDirectDispatcher(services.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.From)))
			scheduler, err := background.NewJobScheduler(app.quotes, app.auth)
			if err != nil {
				return err
			}
			defer scheduler.Stop()
			return scheduler.RunOnce(ctx)
		},
	}
}

// app is the wired service graph shared by the serve and sweep commands
type app struct {
	quotes     repositories.QuoteRepository
	auth       services.AuthService
	portal     services.PortalService
	checkout   services.CheckoutService
	invoices   services.InvoiceService
	uploads    services.UploadService
	admin      services.AdminService
	reconciler services.ReconcilerService
	processor  services.PaymentProcessor
}

func newApp(cfg *config.Config, pool *pgxpool.Pool, cache caching.CacheService, storage services.ObjectStorage, dispatcher services.EmailDispatcher) *app {
	customerRepo := repositories.NewCustomerRepository(pool)
	tokenRepo := repositories.NewAuthTokenRepository(pool)
	activityRepo := repositories.NewActivityRepository(pool)
	quoteRepo := repositories.NewQuoteRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	billingRepo := repositories.NewBillingRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	uploadRepo := repositories.NewUploadRepository(pool)

	notifications := services.NewNotificationService(dispatcher, cfg.Email.AdminEmail, cfg.Auth.MagicLinkTTL)
	processor := services.NewStripeProcessor(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	return &app{
		quotes: quoteRepo,
		auth: services.NewAuthService(customerRepo, tokenRepo, activityRepo, cache, notifications, services.AuthSettings{
			SiteURL:      cfg.Server.SiteURL,
			MagicLinkTTL: cfg.Auth.MagicLinkTTL,
			SessionTTL:   cfg.Auth.SessionTTL,
		}),
		portal: services.NewPortalService(customerRepo, quoteRepo, invoiceRepo, paymentRepo, activityRepo),
		checkout: services.NewCheckoutService(quoteRepo, customerRepo, invoiceRepo, paymentRepo, processor, services.CheckoutSettings{
			SiteURL:  cfg.Server.SiteURL,
			Currency: cfg.Stripe.Currency,
		}),
		invoices:   services.NewInvoiceService(invoiceRepo, paymentRepo, customerRepo),
		uploads:    services.NewUploadService(uploadRepo, quoteRepo, customerRepo, notificationRepo, activityRepo, storage, notifications, cfg.Storage.URLExpiry),
		admin:      services.NewAdminService(quoteRepo, invoiceRepo, customerRepo, notifications, cfg.Server.SiteURL),
		reconciler: services.NewReconcilerService(quoteRepo, customerRepo, billingRepo, notifications),
		processor:  processor,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Database connection
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL); err != nil {
			return err
		}
	}

	// Redis backs the session cache, rate limits and the email queue
	rdb := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	cacheSvc := caching.NewRedisCacheService(rdb)

	storage, err := services.NewMinioStorage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
	if err != nil {
		return err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		log.Printf("WARN: object storage bucket check failed: %v", err)
	}

	mailer := services.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.From)
	dispatcher := services.NewDirectDispatcher(mailer)
	var worker *asynq.Server
	if cfg.Queue.Enabled {
		client := jobs.NewEmailClient(rdb)
		defer client.Close()
		dispatcher = jobs.NewQueueDispatcher(client, cfg.Queue.MaxRetry)

		srv, mux := jobs.NewWorkerServer(rdb, cfg.Queue.Concurrency, jobs.NewEmailWorker(mailer))
		if err := srv.Start(mux); err != nil {
			return err
		}
		worker = srv
		log.Printf("Email worker started with concurrency %d", cfg.Queue.Concurrency)
	}

	a := newApp(cfg, pool, cacheSvc, storage, dispatcher)

	scheduler, err := background.NewJobScheduler(a.quotes, a.auth)
	if err != nil {
		return err
	}
	scheduler.Start()

	adminAuth, stopJWKS, err := middleware.AdminAuth(middleware.AdminAuthConfig{
		Secret:  cfg.Auth.AdminJWTSecret,
		JWKSURL: cfg.Auth.AdminJWKSURL,
	})
	if err != nil {
		return err
	}
	defer stopJWKS()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = common.HTTPErrorHandler

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.CORSAllowedOrigins,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Stripe-Signature"},
		AllowCredentials: !containsWildcard(cfg.Server.CORSAllowedOrigins),
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versions := middleware.NewVersionMiddleware("v1")
	if sunset, ok, _ := cfg.Server.SunsetDate(); ok {
		versions.Deprecate(sunset, cfg.Server.APISunsetMessage)
		log.Printf("WARN: API v1 deprecated, sunset %s", sunset.Format(time.DateOnly))
	}

	router := &handlers.Router{
		Auth: handlers.NewAuthHandlers(a.auth, handlers.CookieSettings{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.SessionTTL,
			Secure: cfg.Auth.CookieSecure,
		}),
		Portal:   handlers.NewPortalHandlers(a.portal, cfg.Stripe.PublishableKey),
		Public:   handlers.NewPublicHandlers(a.portal, a.checkout),
		Checkout: handlers.NewCheckoutHandlers(a.checkout),
		Invoices: handlers.NewInvoiceHandlers(a.invoices),
		Uploads:  handlers.NewUploadHandlers(a.uploads),
		Webhooks: handlers.NewWebhookHandlers(a.processor, a.reconciler),
		Admin:    handlers.NewAdminHandlers(a.admin),
		Health: handlers.NewHealthHandlers(version,
			map[string]handlers.Pinger{
				"database": handlers.PingFunc(pool.Ping),
				"redis":    cacheSvc,
			},
			map[string]handlers.Pinger{
				"storage": handlers.PingFunc(storage.EnsureBucket),
			},
		),
		SessionAuth: middleware.SessionAuth(a.auth, cfg.Auth.CookieName),
		AdminAuth:   adminAuth,
		Version:     versions,
	}
	router.Register(e)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Billing portal v%s starting on port %s (%s)", version, cfg.Server.Port, cfg.Server.Environment)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
