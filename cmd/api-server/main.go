package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/cache"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/database"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/events"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/generation"
	httpAdapter "github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/http"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/memory"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/templates"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/app"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/config"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		workflowRepo  ports.WorkflowRepository
		executionRepo ports.ExecutionRepository
	)
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		workflowRepo = database.NewPostgresWorkflowRepository(pool)
		executionRepo = database.NewPostgresExecutionRepository(pool)
	default:
		store := memory.NewRepository()
		workflowRepo = store
		executionRepo = store
	}

	var executionCache ports.ExecutionCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisExecutionCache(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		executionCache = redisCache
	}

	var eventPublisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("Failed to connect to nats", zap.Error(err))
		}
		defer natsPublisher.Close()
		eventPublisher = natsPublisher
	}

	templateRegistry := templates.NewRegistry()

	tracker := app.NewExecutionTracker(executionRepo, executionCache, eventPublisher, logger)
	nodeExecutor := app.NewNodeExecutor(generation.Providers(), logger)
	executor := app.NewExecutor(workflowRepo, tracker, nodeExecutor, logger)
	workflowService := app.NewWorkflowService(workflowRepo, templateRegistry, logger)

	reaper := app.NewReaper(executor, cfg.Engine.MaxExecutionAge, cfg.Engine.ReapInterval, logger)
	go reaper.Run(ctx)

	workflowHandler := httpAdapter.NewWorkflowHandler(workflowService)
	executionHandler := httpAdapter.NewExecutionHandler(executor)

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "workflow-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/workflows", workflowHandler.CreateWorkflow)
		v1.GET("/workflows", workflowHandler.ListWorkflows)
		v1.GET("/workflows/:id", workflowHandler.GetWorkflow)
		v1.PUT("/workflows/:id", workflowHandler.ReplaceWorkflow)
		v1.DELETE("/workflows/:id", workflowHandler.DeleteWorkflow)
		v1.POST("/workflows/estimate", workflowHandler.EstimateWorkflow)
		v1.POST("/workflows/:id/execute", executionHandler.StartExecution)

		v1.GET("/executions/:id", executionHandler.GetExecution)
		v1.GET("/executions/:id/result", executionHandler.GetExecutionResult)
		v1.POST("/executions/:id/cancel", executionHandler.CancelExecution)

		v1.GET("/templates", workflowHandler.ListTemplates)
		v1.POST("/templates/:id/instantiate", workflowHandler.InstantiateTemplate)

		v1.GET("/node-types", workflowHandler.ListNodeTypes)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting workflow engine API server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
