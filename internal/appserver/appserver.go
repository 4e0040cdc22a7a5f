package appserver

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/config"
	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/service"
	"github.com/careplus/clinic-backend/internal/transport"
	"github.com/careplus/clinic-backend/internal/worker"
	"github.com/careplus/clinic-backend/pkg/postgres"
	"github.com/careplus/clinic-backend/pkg/queue"
	"github.com/careplus/clinic-backend/pkg/redis"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	doctorBookings := repository.NewDoctorBookingRepository(db)
	serviceBookings := repository.NewServiceBookingRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	redeemRepo := repository.NewRedeemRepository(db)
	userRepo := repository.NewUserRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize notification queue
	var taskPublisher service.TaskPublisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()

		redisQueue, err := queue.NewRedisQueue(redisClient, queue.DefaultRedisQueueConfig())
		if err != nil {
			logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		} else {
			logrus.Info("Redis queue initialized")
			taskPublisher = redisQueue
			defer redisQueue.Close()

			dispatcher := worker.NewNotificationDispatcher()
			if err := redisQueue.Subscribe(ctx, dispatcher.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}
	}

	// Initialize services
	bookingService := service.NewBookingService(
		doctorBookings, serviceBookings, doctorRepo, serviceRepo, settingRepo, taskPublisher)
	availabilityService := service.NewAvailabilityService(
		doctorBookings, serviceBookings, doctorRepo, serviceRepo, branchRepo)
	redeemService := service.NewRedeemService(
		redeemRepo, serviceRepo, serviceBookings, cfg.Loyalty, taskPublisher)
	userService := service.NewUserService(userRepo)

	// Start reminder worker when there is a queue to publish into
	if taskPublisher != nil {
		reminderWorker := worker.NewReminderWorker(
			doctorBookings, serviceBookings, taskPublisher,
			cfg.Worker.ReminderInterval, cfg.Worker.BatchSize)
		go reminderWorker.Start(ctx)
		logrus.Info("Reminder worker started")
	}

	// Initialize handlers
	bookingHandler := transport.NewBookingHandler(bookingService)
	availabilityHandler := transport.NewAvailabilityHandler(availabilityService)
	redeemHandler := transport.NewRedeemHandler(redeemService)
	userHandler := transport.NewUserHandler(userService, bookingService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(cfg, bookingHandler, availabilityHandler, redeemHandler, userHandler)
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
