package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_appointment"
	getUserAppointmentsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_user_appointments"
	listAppointmentsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/list_appointments"
	listServicesHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/list_services"
	previewAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/preview_appointment"
	syncServicesHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/sync_appointment_services"
	updateAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/update_appointment"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/config"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	salonServiceRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salonservice"
	"github.com/m04kA/SMC-SalonBooking/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-SalonBooking/internal/service/appointments"
	catalogService "github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
	createAppointmentUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_appointment"
	previewAppointmentUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/preview_appointment"
	syncServicesUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/sync_services"
	updateAppointmentUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/metrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

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

	log.Info("Starting SMC-SalonBooking...")
	log.Info("Configuration loaded from config.toml")

	location, err := cfg.Booking.TimeLocation()
	if err != nil {
		log.Fatal("Failed to load booking location: %v", err)
	}

	// Инициализируем метрики (если включены)
	// nil *metrics.Metrics безопасен: все методы записи ничего не делают
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.Wrap(db, metricsCollector)
	if cfg.Metrics.Enabled {
		go wrappedDB.CollectPoolStats(time.Duration(cfg.Metrics.PoolStatsIntervalMs)*time.Millisecond, stopMetricsCh)
		log.Info("Database metrics collection started")
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB).WithMaxRetries(cfg.Booking.TxMaxRetries)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	serviceRepository := salonServiceRepo.NewRepository(wrappedDB)

	// Блокировка дорожки
	var (
		trackLocker createAppointmentUC.TrackLocker = lock.NoopLocker{}
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		trackLocker = lock.NewRedisLocker(redisClient, cfg.Booking.LockTTL(), cfg.Booking.LockTimeout())
		log.Info("Track locks enabled (redis=%s, ttl=%s, wait=%s)",
			cfg.Redis.Addr, cfg.Booking.LockTTL(), cfg.Booking.LockTimeout())
	} else {
		log.Warn("Redis disabled: concurrent bookings are serialized by the database only")
	}

	// Уведомления
	publisher, err := newPublisher(cfg.Notifications, log)
	if err != nil {
		log.Fatal("Failed to initialize notification publisher: %v", err)
	}
	if closer, ok := publisher.(io.Closer); ok {
		defer closer.Close()
	}
	dispatcher := notifier.NewDispatcher(publisher, log, metricsCollector, cfg.Notifications.NotificationTimeout())
	log.Info("Notifications initialized (driver=%s)", cfg.Notifications.Driver)

	// Расчёт времени и поиск пересечений
	calculator := scheduling.NewCalculator(serviceRepository)
	resolver := scheduling.NewResolver(calculator)
	detector := scheduling.NewDetector(appointmentRepository)

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		detector,
		dispatcher,
		txMgr,
		log,
	)
	catalogSvc := catalogService.NewService(serviceRepository, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		resolver,
		detector,
		trackLocker,
		dispatcher,
		metricsCollector,
		txMgr,
		log,
	)

	updateAppointmentUseCase := updateAppointmentUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		resolver,
		detector,
		trackLocker,
		dispatcher,
		metricsCollector,
		txMgr,
		log,
	)

	syncServicesUseCase := syncServicesUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		resolver,
		detector,
		txMgr,
		log,
	)

	previewAppointmentUseCase := previewAppointmentUC.NewUseCase(resolver, detector, log)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, location, log)
	previewAppointment := previewAppointmentHandler.NewHandler(previewAppointmentUseCase, location, log)
	updateAppointment := updateAppointmentHandler.NewHandler(updateAppointmentUseCase, location, log)
	syncServices := syncServicesHandler.NewHandler(syncServicesUseCase, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, location, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getUserAppointments := getUserAppointmentsHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	listServices := listServicesHandler.NewHandler(catalogSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix, X-User-ID опционален и проверяется на формат
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.UserIdentity)

	// --- Каталог услуг ---
	api.HandleFunc("/services", listServices.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", listServices.HandleGet).Methods(http.MethodGet)

	// --- Записи ---
	// Предварительный расчёт окончания и пересечений (без сохранения)
	api.HandleFunc("/appointments/preview", previewAppointment.Handle).Methods(http.MethodPost)

	// Создание записи (409 с конфликтами, пока не передан overlapConfirmed)
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Список записей за период
	api.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)

	// Получение, редактирование записи
	api.HandleFunc("/appointments/{id}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", updateAppointment.Handle).Methods(http.MethodPut)

	// Синхронизация услуг
	api.HandleFunc("/appointments/{id}/services", syncServices.Handle).Methods(http.MethodPut)

	// Смена статуса
	api.HandleFunc("/appointments/{id}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{id}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// История записей пользователя
	api.HandleFunc("/users/{userId}/appointments", getUserAppointments.Handle).Methods(http.MethodGet)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки уведомлений, поставленных до остановки
	dispatcher.Wait()

	log.Info("Server stopped gracefully")
}

// newPublisher выбирает способ доставки уведомлений по драйверу из конфигурации
func newPublisher(cfg config.NotificationsConfig, log *logger.Logger) (notifier.Publisher, error) {
	switch cfg.Driver {
	case config.NotificationDriverKafka:
		brokers := make([]string, 0)
		for _, b := range strings.Split(cfg.Brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return notifier.NewKafkaPublisher(brokers, cfg.Topic)

	case config.NotificationDriverHTTP:
		return notifier.NewHTTPPublisher(cfg.URL, cfg.NotificationTimeout()), nil

	default:
		return notifier.NewLogPublisher(log), nil
	}
}
