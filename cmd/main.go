package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	agendaHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/agenda"
	animalsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/animals"
	appointmentsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/appointments"
	authHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/auth"
	clinicsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/clinics"
	createAppointmentHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/create_appointment"
	documentsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/documents"
	getAvailableSlotsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/get_available_slots"
	notificationsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/notifications"
	remindersHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/reminders"
	slotsHandler "github.com/m04kA/SMC-VetBookingService/internal/api/handlers/slots"
	"github.com/m04kA/SMC-VetBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-VetBookingService/internal/config"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/filestore"
	"github.com/m04kA/SMC-VetBookingService/internal/infra/lock"
	agendaRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/agenda"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	appointmentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/appointment"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	documentRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/document"
	notificationRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/notification"
	reminderRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/reminder"
	slotRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/slot"
	userRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-VetBookingService/internal/integrations/mailer"
	agendaService "github.com/m04kA/SMC-VetBookingService/internal/service/agenda"
	animalsService "github.com/m04kA/SMC-VetBookingService/internal/service/animals"
	appointmentsService "github.com/m04kA/SMC-VetBookingService/internal/service/appointments"
	authService "github.com/m04kA/SMC-VetBookingService/internal/service/auth"
	clinicsService "github.com/m04kA/SMC-VetBookingService/internal/service/clinics"
	documentsService "github.com/m04kA/SMC-VetBookingService/internal/service/documents"
	notificationsService "github.com/m04kA/SMC-VetBookingService/internal/service/notifications"
	remindersService "github.com/m04kA/SMC-VetBookingService/internal/service/reminders"
	slotsService "github.com/m04kA/SMC-VetBookingService/internal/service/slots"
	createAppointmentUC "github.com/m04kA/SMC-VetBookingService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-VetBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-VetBookingService/internal/worker"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
	"github.com/m04kA/SMC-VetBookingService/pkg/metrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/txmanager"
)

// distributedLocker общий контракт блокировок для бронирования и напоминаний
type distributedLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
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

	log.Info("Starting SMC-VetBookingService...")

	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Server.Timezone, err)
	}
	log.Info("Calendar days are computed in %s", location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var dbCollector dbmetrics.Collector
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbCollector = metricsCollector
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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без коллектора обёртка не пишет метрики, но транзакции через контекст работают так же
	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Блокировки: Redis, если включён, иначе только гарантии БД
	var locker distributedLocker = lock.NoopLocker{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is not reachable at %s, bookings fall back to database locking: %v", cfg.Redis.Addr, err)
		} else {
			log.Info("Connected to Redis at %s (lock ttl=%s)", cfg.Redis.Addr, cfg.Redis.LockTTL())
		}
		cancel()
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL())
	}

	// Почта: SMTP или запись в лог
	var mail notificationsService.Mailer
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Info("SMTP mailer enabled (%s:%d)", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		mail = mailer.NewLogMailer(log)
		log.Info("SMTP disabled, emails are written to the log")
	}

	store, err := filestore.NewLocalStore(cfg.Documents.Dir)
	if err != nil {
		log.Fatal("Failed to initialize document store at %s: %v", cfg.Documents.Dir, err)
	}

	// Инициализируем репозитории
	userRepository := userRepo.NewRepository(wrappedDB)
	clinicRepository := clinicRepo.NewRepository(wrappedDB)
	animalRepository := animalRepo.NewRepository(wrappedDB)
	slotRepository := slotRepo.NewRepository(wrappedDB)
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	agendaRepository := agendaRepo.NewRepository(wrappedDB)
	reminderRepository := reminderRepo.NewRepository(wrappedDB)
	notificationRepository := notificationRepo.NewRepository(wrappedDB)
	documentRepository := documentRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	authSvc := authService.NewService(
		userRepository,
		authService.NewPasswordHasher(0),
		authService.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL()),
		log,
	)
	notificationSvc := notificationsService.NewService(
		notificationRepository,
		userRepository,
		animalRepository,
		clinicRepository,
		mail,
		metricsCollector,
		location,
		log,
	)
	reminderSvc := remindersService.NewService(
		reminderRepository,
		appointmentRepository,
		animalRepository,
		clinicRepository,
		notificationSvc,
		locker,
		metricsCollector,
		cfg.Reminders.BatchSize,
		log,
	)
	appointmentSvc := appointmentsService.NewService(appointmentRepository, reminderSvc, notificationSvc, log)
	agendaSvc := agendaService.NewService(agendaRepository, appointmentRepository, clinicRepository, location, log)
	clinicSvc := clinicsService.NewService(clinicRepository, userRepository, log)
	animalSvc := animalsService.NewService(animalRepository, log)
	slotSvc := slotsService.NewService(slotRepository, clinicRepository, log)
	documentSvc := documentsService.NewService(documentRepository, appointmentRepository, store, cfg.Documents.MaxSizeBytes(), log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		clinicRepository,
		animalRepository,
		agendaRepository,
		txMgr,
		locker,
		reminderSvc,
		notificationSvc,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		clinicRepository,
		slotRepository,
		appointmentRepository,
		agendaRepository,
		location,
		log,
	)

	// Инициализируем handlers
	authH := authHandler.NewHandler(authSvc, log)
	clinicsH := clinicsHandler.NewHandler(clinicSvc, log)
	animalsH := animalsHandler.NewHandler(animalSvc, log)
	slotsH := slotsHandler.NewHandler(slotSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	appointmentsH := appointmentsHandler.NewHandler(appointmentSvc, log)
	agendaH := agendaHandler.NewHandler(agendaSvc, log)
	remindersH := remindersHandler.NewHandler(reminderSvc, log)
	notificationsH := notificationsHandler.NewHandler(notificationSvc, log)
	documentsH := documentsHandler.NewHandler(documentSvc, cfg.Documents.MaxSizeBytes(), log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)

	api.HandleFunc("/clinics", clinicsH.List).Methods(http.MethodGet)
	api.HandleFunc("/clinics/{id}", clinicsH.Get).Methods(http.MethodGet)
	api.HandleFunc("/clinics/{id}/vets", clinicsH.ListVets).Methods(http.MethodGet)

	// Свободные слоты клиники на дату
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(authSvc, log))

	staff := []domain.Role{domain.RoleAssistant, domain.RoleClinicAdmin, domain.RoleAdmin}
	clinical := []domain.Role{domain.RoleVet, domain.RoleAssistant, domain.RoleClinicAdmin, domain.RoleAdmin}

	// --- Профиль ---
	protected.HandleFunc("/auth/profile", authH.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", authH.UpdateProfile).Methods(http.MethodPatch)
	protected.HandleFunc("/auth/password", authH.ChangePassword).Methods(http.MethodPatch)
	protected.Handle("/users/{id}/roles", only(authH.GrantRole, domain.RoleAdmin)).Methods(http.MethodPost)

	// --- Клиники ---
	protected.Handle("/clinics", only(clinicsH.Create, domain.RoleAdmin)).Methods(http.MethodPost)
	protected.Handle("/clinics/{id}/vets", only(clinicsH.AddVet, domain.RoleAdmin, domain.RoleClinicAdmin)).Methods(http.MethodPost)

	// --- Животные ---
	protected.HandleFunc("/animals", animalsH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/animals/me", animalsH.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/animals/{id}", animalsH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/animals/{id}", animalsH.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/animals/{id}", animalsH.Delete).Methods(http.MethodDelete)

	// --- Сетка слотов ---
	protected.Handle("/slots", only(slotsH.Create, staff...)).Methods(http.MethodPost)

	// --- Приёмы ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/me", appointmentsH.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", appointmentsH.Get).Methods(http.MethodGet)
	protected.Handle("/appointments/{id}/confirm", only(appointmentsH.Confirm, clinical...)).Methods(http.MethodPatch)
	protected.Handle("/appointments/{id}/reject", only(appointmentsH.Reject, clinical...)).Methods(http.MethodPatch)
	protected.Handle("/appointments/{id}/complete", only(appointmentsH.Complete, domain.RoleVet)).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/cancel", appointmentsH.Cancel).Methods(http.MethodPatch)

	// --- Расписание врача ---
	protected.Handle("/agenda/me", only(agendaH.GetMine, domain.RoleVet)).Methods(http.MethodGet)
	protected.Handle("/agenda/blocks", only(agendaH.CreateBlock, domain.RoleVet)).Methods(http.MethodPost)
	protected.Handle("/agenda/blocks/{id}", only(agendaH.DeleteBlock, domain.RoleVet, domain.RoleClinicAdmin, domain.RoleAdmin)).Methods(http.MethodDelete)

	// --- Напоминания ---
	protected.Handle("/reminders/plan/appointment/{id}", only(remindersH.Plan, clinical...)).Methods(http.MethodPost)
	protected.Handle("/reminders/run-due", only(remindersH.RunDue, domain.RoleAdmin)).Methods(http.MethodPost)
	protected.Handle("/reminders/rules", only(remindersH.ListRules, domain.RoleAdmin)).Methods(http.MethodGet)
	protected.Handle("/reminders/rules", only(remindersH.CreateRule, domain.RoleAdmin)).Methods(http.MethodPost)

	// --- Уведомления ---
	protected.HandleFunc("/notifications/me", notificationsH.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/read", notificationsH.MarkRead).Methods(http.MethodPatch)

	// --- Документы ---
	protected.HandleFunc("/documents/upload/appointment/{id}", documentsH.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/documents/download/{id}", documentsH.Download).Methods(http.MethodGet)
	protected.HandleFunc("/documents/appointment/{id}", documentsH.ListByAppointment).Methods(http.MethodGet)

	// CORS снаружи роутера: preflight OPTIONS не совпадает ни с одним маршрутом
	handler := middleware.CORS(cfg.CORS.AllowedOrigins)(r)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Фоновая отправка напоминаний
	workerCtx, stopWorker := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if cfg.Reminders.Enabled {
		reminderWorker := worker.NewReminderWorker(reminderSvc, cfg.Reminders.Interval(), log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reminderWorker.Run(workerCtx)
		}()
	} else {
		log.Info("Reminder worker disabled, use POST /api/reminders/run-due")
	}

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopWorker()
	wg.Wait()

	close(stopMetricsCh)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close Redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}

// only пропускает запрос, если у вызывающего есть одна из ролей
func only(h http.HandlerFunc, roles ...domain.Role) http.Handler {
	return middleware.RequireRoles(roles...)(h)
}
