package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"styledesk/config"
	"styledesk/database"
	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/handlers"
	"styledesk/routes"
	"styledesk/services/booking"
	"styledesk/services/calendar"
	"styledesk/services/conversation"
	"styledesk/services/notification"
	"styledesk/services/reminder"
	"styledesk/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load business settings: %v", err)
	}

	database.InitDB()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	repo := ledgerRepo.NewMongoLedgerRepo()
	ctx, cancelIndexes := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureIndexes(ctx); err != nil {
		cancelIndexes()
		logger.Sugar().Fatalf("main: failed to ensure ledger indexes: %v", err)
	}
	cancelIndexes()

	sessionClient := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	sessionStore := conversation.NewRedisSessionStore(sessionClient, 24*time.Hour)

	metrics := utils.NewMetrics("styledesk")

	// External calendar gateway, optional.
	var calendarGateway calendar.Gateway
	if settings.CalendarEnabled {
		gw, err := calendar.NewGoogleGateway(context.Background(), &config.AppConfig, settings.Timezone)
		if err != nil {
			logger.Sugar().Warnf("main: calendar gateway disabled: %v", err)
		} else {
			calendarGateway = gw
		}
	}

	// Notification channels, each gated on its own settings flag.
	var channels []notification.Channel
	if settings.SMSEnabled {
		channels = append(channels, notification.NewSMSChannel(config.AppConfig.SMSWebhookURL, config.AppConfig.SMSWebhookToken))
	}
	if settings.EmailEnabled {
		channels = append(channels, notification.NewEmailChannel(config.AppConfig.SMTPHost, config.AppConfig.SMTPPort, config.AppConfig.SMTPFrom))
	}
	if settings.WebhookEnabled {
		channels = append(channels, notification.NewWebhookChannel(config.AppConfig.WebhookURL))
	}

	// services.
	ledgerService := &booking.DefaultSlotLedger{
		Repo:     repo,
		Settings: settings,
		Calendar: calendarGateway,
		Metrics:  metrics,
	}
	resolver := &booking.ConflictChecker{
		Repo:     repo,
		Settings: settings,
		Calendar: calendarGateway,
		Metrics:  metrics,
	}
	engine := &conversation.DefaultConversationEngine{
		Store:    sessionStore,
		Ledger:   ledgerService,
		Resolver: resolver,
		Settings: settings,
		Metrics:  metrics,
	}
	scheduler := &reminder.Scheduler{
		Repo:     repo,
		Settings: settings,
		Channels: channels,
		Metrics:  metrics,
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go scheduler.Run(schedulerCtx)

	// handlers.
	chatHandler := handlers.NewChatHandler(engine)
	appointmentHandler := handlers.NewAppointmentHandler(ledgerService, resolver)
	slotHandler := handlers.NewSlotHandler(ledgerService)
	reminderHandler := handlers.NewReminderHandler(scheduler)

	handlerBundle := &handlers.HandlerBundle{
		// Chat endpoint.
		ProcessMessage: chatHandler.ProcessMessage,

		// Appointment endpoints.
		ListAppointments:      appointmentHandler.List,
		GetAppointment:        appointmentHandler.Get,
		CancelAppointment:     appointmentHandler.Cancel,
		SetAppointmentStatus:  appointmentHandler.SetStatus,
		RescheduleAppointment: appointmentHandler.Reschedule,
		CheckConflicts:        appointmentHandler.CheckConflicts,
		AnalyzeSchedule:       appointmentHandler.AnalyzeSchedule,

		// Slot endpoint.
		ListAvailableSlots: slotHandler.ListAvailable,

		// Reminder endpoints.
		RunReminderPass: reminderHandler.RunPass,
		ReminderStats:   reminderHandler.Stats,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
