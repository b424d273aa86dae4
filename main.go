package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"time-tracker/backend/internal/cache"
	"time-tracker/backend/internal/config"
	"time-tracker/backend/internal/database"
	"time-tracker/backend/internal/handlers"
	"time-tracker/backend/internal/middleware"
	"time-tracker/backend/internal/models"
	"time-tracker/backend/internal/monitoring"
	"time-tracker/backend/internal/services"
	"time-tracker/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.IsProduction() {
		poolConfig.LogLevel = logger.Warn
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	err = pool.DB.AutoMigrate(&models.User{}, &models.Task{}, &models.TimeLog{}, &models.Token{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	var appCache *cache.MultiLevelCache
	if err := redisCache.Health(); err != nil {
		log.Printf("Redis unavailable, falling back to in-process cache: %v", err)
		appCache = cache.NewMultiLevelCache(nil)
	} else {
		appCache = cache.NewMultiLevelCache(redisCache)
	}
	defer appCache.Close()

	taskService := services.NewTaskService()
	taskService.ClipWeekToBoundary = cfg.Stats.ClipWeekToBoundary
	cachedTasks := services.NewCachedTaskService(taskService, appCache)

	authService := services.NewAuthService()
	registerService := services.NewRegisterService()
	userService := services.NewUserService()

	taskHandler := handlers.NewTaskHandler(pool.DB, cachedTasks)
	authHandler := handlers.NewAuthHandler(pool.DB, authService)
	registerHandler := handlers.NewRegisterHandler(pool.DB, registerService)
	refreshHandler := handlers.NewRefreshHandler(pool.DB, authService)
	logoutHandler := handlers.NewLogoutHandler(pool.DB, authService)
	userHandler := handlers.NewUserHandler(pool.DB, userService)

	var jobWorker *worker.Worker
	var scheduler *worker.Scheduler
	if redisCache.Health() == nil {
		jobWorker = worker.NewWorker(worker.WorkerConfig{
			RedisClient: redisCache.Client(),
			Queues:      cfg.Worker.Queues,
		})
		jobWorker.RegisterHandler(worker.JobTypeStaleTaskReminder,
			worker.NewStaleTaskReminderHandler(pool.DB, cfg.Worker.StaleTaskAfter))
		jobWorker.RegisterHandler(worker.JobTypeWeeklySummary,
			worker.NewWeeklySummaryHandler(pool.DB, taskService))
		jobWorker.RegisterHandler(worker.JobTypeTokenCleanup,
			worker.NewTokenCleanupHandler(pool.DB))
		jobWorker.Start(cfg.Worker.Concurrency)

		scheduler = worker.NewScheduler(worker.NewJobQueue(redisCache.Client()))
		scheduler.Start(worker.SchedulerConfig{
			ReminderInterval: cfg.Worker.ReminderInterval,
			SummaryInterval:  cfg.Worker.SummaryInterval,
			CleanupInterval:  cfg.Worker.CleanupInterval,
		})
	} else {
		log.Println("Background worker disabled: Redis unavailable")
	}

	metrics := monitoring.NewMetrics()
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.Register("database", func(ctx context.Context) error {
		return pool.Health()
	})
	healthChecker.Register("redis", func(ctx context.Context) error {
		return redisCache.Health()
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(cors.Default())
	router.Use(metrics.Middleware())

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
			RequestsPerMin:  cfg.RateLimit.RequestsPerMin,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		defer limiter.Stop()
		router.Use(limiter.Middleware())
	}

	router.GET("/healthz", healthChecker.Handler(metrics.StartTime))
	router.GET("/readyz", healthChecker.ReadinessHandler())
	router.GET("/livez", monitoring.LivenessHandler(metrics.StartTime))
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", registerHandler.Registration)
			auth.POST("/token", authHandler.Token)
			auth.POST("/refresh", refreshHandler.Refresh)
			auth.POST("/logout", logoutHandler.Logout)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.AuthzMiddleware())
		{
			authorized.GET("/me", userHandler.GetProfile)
			authorized.PUT("/me", userHandler.UpdateProfile)

			authorized.POST("/tasks", taskHandler.CreateTask)
			authorized.GET("/tasks", taskHandler.GetTasks)
			authorized.GET("/tasks/last-working", taskHandler.GetLastWorkingTask)
			authorized.GET("/tasks/last", taskHandler.GetLastTask)
			authorized.GET("/tasks/:id", taskHandler.GetTaskByID)
			authorized.PATCH("/tasks/:id/status", taskHandler.UpdateTaskStatus)

			authorized.GET("/stats", taskHandler.GetTaskStats)
		}
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}

	log.Println("Server stopped")
}
