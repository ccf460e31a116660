package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"raffle-system/config"
	"raffle-system/handlers"
	"raffle-system/internal/mail"
	"raffle-system/internal/mail/brevo"
	"raffle-system/internal/mail/sendgrid"
	"raffle-system/internal/store/pbstore"
	_ "raffle-system/migrations"
	"raffle-system/models"
	"raffle-system/monitoring"
	"raffle-system/scan"
	"raffle-system/services"
	"raffle-system/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize mail provider
	mailer, err := buildMailer(cfg)
	if err != nil {
		return err
	}
	log.Printf("Mail provider: %s", mailer.GetProvider())

	// Initialize monitoring
	monitor := monitoring.NewMonitor(redisClient)
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	// Initialize services
	ticketStore := pbstore.New(app)
	tokenService := services.NewTokenService(cfg.TicketSecret, cfg.VerifyBaseURL, cfg.TokenMaxAgeDays)
	templateService := services.NewTemplateService()
	notificationService := services.NewNotificationService(templateService, mailer, redisClient, monitor, cfg)
	ticketService := services.NewTicketService(ticketStore, tokenService, notificationService, redisClient, pn, monitor, cfg)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(ticketService, cfg)
	paymentHandler := handlers.NewPaymentHandler(ticketService, notificationService, cfg)
	attendanceHandler := handlers.NewAttendanceHandler(ticketService, cfg)
	verifyHandler := handlers.NewVerifyHandler(ticketService, tokenService, redisClient, cfg)
	notificationHandler := handlers.NewNotificationHandler(notificationService, templateService, cfg)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Offline scan station on its own port
	var scanServer *scan.Server
	if cfg.ScanPort != "" {
		scanServer = scan.NewServer(tokenService, redisClient, cfg)
		go func() {
			log.Printf("Scan station listening on :%s", cfg.ScanPort)
			if err := scanServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Scan station stopped: %v", err)
			}
		}()
	}

	// Setup graceful shutdown
	go handleShutdown(scanServer)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Ticket endpoints
		e.Router.POST("/api/v1/tickets", ticketHandler.CreateTicket)
		e.Router.GET("/api/v1/dashboard", ticketHandler.GetDashboard)
		e.Router.GET("/api/v1/export", ticketHandler.ExportTickets)

		// Payment endpoints
		e.Router.POST("/api/v1/payments/verify", paymentHandler.VerifyPayment)
		e.Router.POST("/api/v1/payments/remind", paymentHandler.SendPaymentReminder)

		// Attendance endpoints
		e.Router.POST("/api/v1/attendance/mark", attendanceHandler.MarkAttendance)
		e.Router.GET("/api/v1/attendance/stats", attendanceHandler.GetAttendanceStats)

		// Verification endpoints
		e.Router.POST("/api/v1/verify-ticket", verifyHandler.VerifyTicket)
		e.Router.GET("/api/v1/qrcode", verifyHandler.GetQRCode)
		e.Router.GET("/api/v1/public/verify", verifyHandler.PublicVerify)

		// Notification endpoints
		e.Router.POST("/api/v1/notifications/send", notificationHandler.SendNotification)
		e.Router.GET("/api/v1/notifications/templates", notificationHandler.ListTemplates)
		e.Router.GET("/api/v1/notifications/logs", notificationHandler.GetEmailLogs)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		setupTicketHooks(app, redisClient)
		go warmPendingCount(ticketService)

		return e.Next()
	})

	return app.Start()
}

func buildMailer(cfg *config.Config) (mail.Mailer, error) {
	factory := mail.NewFactory()

	switch mail.Provider(cfg.MailProvider) {
	case mail.ProviderSendGrid:
		return factory.CreateMailer(mail.ProviderSendGrid, &sendgrid.Config{
			APIKey:      cfg.SendGridAPIKey,
			SenderName:  cfg.EmailFromName,
			SenderEmail: cfg.EmailFromAddress,
		})
	default:
		return factory.CreateMailer(mail.ProviderBrevo, &brevo.Config{
			APIKey:      cfg.BrevoAPIKey,
			SenderName:  cfg.EmailFromName,
			SenderEmail: cfg.EmailFromAddress,
		})
	}
}

func startMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// setupTicketHooks keeps the Redis pending-payment counter in sync with
// direct record edits made through the PocketBase admin UI.
func setupTicketHooks(app *pocketbase.PocketBase, redisClient *redis.Client) {
	app.OnRecordCreateRequest("tickets").BindFunc(func(e *core.RecordRequestEvent) error {
		if e.Record.GetString("payment_status") == models.PaymentPending {
			if err := redisClient.Incr(e.Request.Context(), "tickets:pending_count").Err(); err != nil {
				slog.Error("Failed to bump pending counter", "error", err)
			}
		}
		redisClient.Del(e.Request.Context(), "dashboard:stats")
		return e.Next()
	})

	app.OnRecordUpdateRequest("tickets").BindFunc(func(e *core.RecordRequestEvent) error {
		redisClient.Del(e.Request.Context(), "dashboard:stats")
		slog.Info("Ticket updated via admin UI", "ticket", e.Record.GetString("ticket_number"))
		return e.Next()
	})
}

// warmPendingCount primes the dashboard cache and the pending counter so the
// first admin request and the metrics collector see fresh numbers.
func warmPendingCount(ticketService *services.TicketService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := ticketService.Dashboard(ctx); err != nil {
		log.Printf("Failed to warm dashboard cache: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(scanServer *scan.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")

	if scanServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := scanServer.Shutdown(ctx); err != nil {
			log.Printf("Scan station shutdown: %v", err)
		}
	}
}
