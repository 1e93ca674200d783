package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"

	"registration-system/config"
	"registration-system/handlers"
	"registration-system/models"
	"registration-system/monitoring"
	"registration-system/security"
	"registration-system/services"
	"registration-system/services/delivery"
	"registration-system/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize PubNub for the live check-in feed (optional)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("registration-server"))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	}

	// Initialize the delivery channel
	channel, err := delivery.New(delivery.Provider(cfg.DeliveryChannel), app, cfg)
	if err != nil {
		return fmt.Errorf("delivery channel: %w", err)
	}

	// Initialize services
	ticketService := services.NewTicketService(app, cfg)
	checkinFeed := services.NewCheckinFeed(pn)
	customerService := services.NewCustomerService(app, cfg, ticketService, channel, checkinFeed)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(app, cfg)
	eventHandler := handlers.NewEventHandler(app, customerService)
	customerHandler := handlers.NewCustomerHandler(app, customerService)
	userHandler := handlers.NewUserHandler(app)

	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Mailer settings come from the environment, not the stored config
	app.OnBootstrap().BindFunc(func(e *core.BootstrapEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		applyMailSettings(e.App, cfg)
		return nil
	})

	// Metrics server
	if cfg.EnableMetrics {
		go monitoring.Serve(cfg.MetricsPort)
	}

	// Register routes
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(
			handlers.ObserveRequests(),
			handlers.RequestTimeout(cfg.RequestTimeout),
		)

		auth := security.RequireAuth(app, cfg.JWTSecret)
		admin := security.RequireRole(models.RoleAdmin)

		// Auth endpoints
		se.Router.POST("/api/auth/login", authHandler.Login).
			BindFunc(limiter.Limit("login"))
		se.Router.POST("/api/auth/register", authHandler.Register).
			BindFunc(auth, admin)

		// Event endpoints
		events := se.Router.Group("/api/events")
		events.GET("/slug/{slug}", eventHandler.GetEventBySlug)
		events.GET("/{id}/image", eventHandler.GetEventImage)
		events.GET("", eventHandler.GetEvents).BindFunc(auth)
		events.GET("/{id}", eventHandler.GetEvent).BindFunc(auth)
		events.GET("/{id}/count", eventHandler.GetEventCount).BindFunc(auth)
		events.POST("", eventHandler.CreateEvent).BindFunc(auth, admin)
		events.PUT("/{id}", eventHandler.UpdateEvent).BindFunc(auth, admin)
		events.PUT("/{id}/custom-fields", eventHandler.UpdateCustomFields).BindFunc(auth, admin)
		events.DELETE("/{id}", eventHandler.DeleteEvent).BindFunc(auth, admin)

		// Customer endpoints
		customers := se.Router.Group("/api/customers")
		customers.GET("/event-fields/{eventId}", customerHandler.GetEventFormFields)
		customers.POST("/verify", customerHandler.VerifyCustomer).
			BindFunc(auth, limiter.Limit("verify"))
		customers.GET("", customerHandler.GetCustomers).BindFunc(auth)
		customers.GET("/{id}", customerHandler.GetCustomer).BindFunc(auth)
		customers.POST("", customerHandler.CreateCustomer).BindFunc(auth, admin)
		customers.PUT("/{id}", customerHandler.UpdateCustomer).BindFunc(auth, admin)
		customers.DELETE("/{id}", customerHandler.DeleteCustomer).BindFunc(auth, admin)
		customers.POST("/resend-emails", customerHandler.ResendTickets).BindFunc(auth, admin)

		// User endpoints
		users := se.Router.Group("/api/users")
		users.BindFunc(auth, admin)
		users.GET("", userHandler.GetUsers)
		users.GET("/{id}", userHandler.GetUser)
		users.PUT("/{id}", userHandler.UpdateUser)
		users.DELETE("/{id}", userHandler.DeleteUser)

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{
				"status":    "healthy",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		slog.Info("server routes registered",
			"delivery_channel", cfg.DeliveryChannel,
			"max_registrations", cfg.MaxRegistrations,
		)

		return se.Next()
	})

	// Start server
	return app.Start()
}

func applyMailSettings(app core.App, cfg *config.Config) {
	settings := app.Settings()
	settings.Meta.SenderName = cfg.SenderName
	settings.Meta.SenderAddress = cfg.SenderAddress

	if cfg.SMTPHost != "" {
		settings.SMTP.Enabled = true
		settings.SMTP.Host = cfg.SMTPHost
		settings.SMTP.Port = cfg.SMTPPort
		settings.SMTP.Username = cfg.SMTPUsername
		settings.SMTP.Password = cfg.SMTPPassword
	}
}
