package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/config"
	"github.com/bountyhub/bountyhub-backend/internal/db"
	httpHandlers "github.com/bountyhub/bountyhub-backend/internal/http/handlers"
	httpRouter "github.com/bountyhub/bountyhub-backend/internal/http/router"
	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера.
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Платёжный процессор. Пока поддерживается только внутренний,
	// конфиг оставлен под будущий внешний шлюз.
	processor := payment.NewInternalProcessor()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	bountyRepo := repository.NewBountyRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	messageRepo := repository.NewMessageRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, tokenManager)
	bountyService := service.NewBountyService(dbConn, bountyRepo, requestRepo, walletRepo, submissionRepo, disputeRepo, userRepo, processor, notificationService, cfg.MaxRevisionsPerBounty)
	requestService := service.NewRequestService(requestRepo, bountyRepo, userRepo, notificationService)
	submissionService := service.NewSubmissionService(dbConn, submissionRepo, bountyRepo, notificationService)
	walletService := service.NewWalletService(dbConn, walletRepo, withdrawalRepo, userRepo)
	disputeService := service.NewDisputeService(dbConn, disputeRepo, bountyRepo, submissionRepo, walletRepo, processor, notificationService)
	cascadeService := service.NewCascadeService(dbConn, userRepo, bountyRepo, requestRepo, walletRepo, processor)
	ratingService := service.NewRatingService(ratingRepo, bountyRepo)
	reportService := service.NewReportService(reportRepo, bountyRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, bountyRepo, notificationService)
	profileService := service.NewProfileService(userRepo, ratingRepo)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, service.LogSender{})

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		Profile:      httpHandlers.NewProfileHandler(profileService),
		Bounty:       httpHandlers.NewBountyHandler(bountyService),
		Request:      httpHandlers.NewRequestHandler(requestService),
		Submission:   httpHandlers.NewSubmissionHandler(submissionService),
		Wallet:       httpHandlers.NewWalletHandler(walletService),
		Dispute:      httpHandlers.NewDisputeHandler(disputeService),
		Rating:       httpHandlers.NewRatingHandler(ratingService),
		Report:       httpHandlers.NewReportHandler(reportService),
		Message:      httpHandlers.NewMessageHandler(messageService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Verification: httpHandlers.NewVerificationHandler(verificationService, userRepo),
		Account:      httpHandlers.NewAccountHandler(cascadeService),
		Health:       httpHandlers.NewHealthHandler(dbConn),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager),
	}

	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
