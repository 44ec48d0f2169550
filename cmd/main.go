package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/get_user_bookings"
	paymentWebhookHandler "github.com/m04kA/SPA-BookingService/internal/api/handlers/payment_webhook"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/config"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/infra/events"
	arrangementRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/arrangement"
	bookingRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
	giftcardRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/giftcard"
	timeslotRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/timeslot"
	voucherRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/voucher"
	"github.com/m04kA/SPA-BookingService/internal/jobs"
	bookingsService "github.com/m04kA/SPA-BookingService/internal/service/bookings"
	discountsService "github.com/m04kA/SPA-BookingService/internal/service/discounts"
	createBookingUC "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SPA-BookingService/internal/usecase/get_availability"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/logger"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/SPA-BookingService/pkg/txmanager"
)

// TxManager общий интерфейс обоих менеджеров транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher общий интерфейс реального и заглушечного издателя событий
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *domain.Booking)
	PublishBookingCancelled(ctx context.Context, booking *domain.Booking)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SPA-BookingService...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		catalogRepository     *catalogRepo.Repository
		arrangementRepository *arrangementRepo.Repository
		timeslotRepository    *timeslotRepo.Repository
		bookingRepository     *bookingRepo.Repository
		voucherRepository     *voucherRepo.Repository
		giftcardRepository    *giftcardRepo.Repository
		txMgr                 TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		arrangementRepository = arrangementRepo.NewRepository(wrappedDB)
		timeslotRepository = timeslotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		voucherRepository = voucherRepo.NewRepository(wrappedDB)
		giftcardRepository = giftcardRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		catalogRepository = catalogRepo.NewRepository(db)
		arrangementRepository = arrangementRepo.NewRepository(db)
		timeslotRepository = timeslotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		voucherRepository = voucherRepo.NewRepository(db)
		giftcardRepository = giftcardRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Издатель событий
	var publisher EventPublisher
	if cfg.Events.Enabled {
		kafkaPublisher := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, metricsCollector, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info("Event publisher initialized (brokers=%v, topic=%s)", cfg.Events.Brokers, cfg.Events.Topic)
	} else {
		publisher = events.NopPublisher{}
		log.Info("Event publishing disabled")
	}

	// Инициализируем сервисы
	discountComposer := discountsService.NewService(
		voucherRepository,
		giftcardRepository,
		bookingRepository,
		&discountsService.RealTimeProvider{},
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		timeslotRepository,
		publisher,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		catalogRepository,
		arrangementRepository,
		timeslotRepository,
		bookingRepository,
		discountComposer,
		publisher,
		txMgr,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		catalogRepository,
		arrangementRepository,
		timeslotRepository,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(bookingSvc, log)

	// Периодическое обслуживание
	if cfg.Jobs.Enabled {
		maintenance := jobs.NewMaintenance(bookingRepository, voucherRepository, giftcardRepository, log)
		if err := maintenance.Start(cfg.Jobs.Schedule); err != nil {
			log.Fatal("Failed to start maintenance job: %v", err)
		}
		defer maintenance.Stop()
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// PUBLIC ROUTES (без аутентификации)
	api.HandleFunc("/branches/{branchId}/services/{serviceId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// PROTECTED ROUTES (требуют X-User-ID header)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// INTERNAL ROUTES (платежные хуки, защищены X-Internal-Token)
	internal := r.PathPrefix("/internal/v1").Subrouter()
	internal.Use(middleware.InternalToken(cfg.Auth.InternalToken))

	internal.HandleFunc("/bookings/{bookingId}/payment-succeeded",
		paymentWebhook.HandlePaymentSucceeded).Methods(http.MethodPost)
	internal.HandleFunc("/bookings/{bookingId}/payment-failed",
		paymentWebhook.HandlePaymentFailed).Methods(http.MethodPost)
	internal.HandleFunc("/bookings/{bookingId}/confirm",
		paymentWebhook.HandleConfirm).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
