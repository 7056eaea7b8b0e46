package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dubflow/api/internal/auth"
	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/config"
	"github.com/dubflow/api/internal/handler"
	"github.com/dubflow/api/internal/middleware"
	"github.com/dubflow/api/internal/service"
	ws "github.com/dubflow/api/internal/websocket"
	"github.com/dubflow/api/internal/worker"
	"github.com/dubflow/api/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	validate := validator.New()
	hub := ws.NewHub()

	elevenLabsClient := client.NewElevenLabsClient(&cfg.ElevenLabs)
	anthropicClient := client.NewAnthropicClient(&cfg.Anthropic)

	// Storage is optional; without it artifacts publish to mock URLs.
	var storageClient client.StorageClient
	if s3Client, err := client.NewS3Client(&cfg.Storage); err == nil {
		storageClient = s3Client
	} else {
		var credErr *client.CredentialError
		if errors.As(err, &credErr) {
			log.Println("Info: object storage not configured, using mock storage")
		} else {
			log.Printf("Warning: storage client not initialized: %v", err)
		}
	}

	var jwksVerifier *auth.JWKSVerifier
	if cfg.OIDC.Issuer != "" {
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.OIDC)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	pipelineService := service.NewPipelineService(redisClient, asynqClient)
	captionService := service.NewCaptionService(anthropicClient)
	videoService := service.NewVideoService(cfg.Pipeline.InputDir)

	pipelineHandler := handler.NewPipelineHandler(pipelineService, validate)
	captionsHandler := handler.NewCaptionsHandler(captionService, validate)
	videosHandler := handler.NewVideosHandler(videoService)

	var tokenVerifier auth.TokenVerifier
	if jwksVerifier != nil {
		tokenVerifier = jwksVerifier
	}
	authHandler := handler.NewAuthHandler(tokenVerifier, cfg.JWT.Secret)

	apiAuth := selectAuth(cfg, jwksVerifier)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: fallbackErrorHandler,
		BodyLimit:    500 * 1024 * 1024, // source videos
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Format: requestLogFormat(cfg.Server.LogLevel)}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":   "dubflow-api",
			"timestamp": time.Now().Unix(),
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"elevenlabs": elevenLabsClient.IsConfigured(),
				"anthropic":  anthropicClient.IsConfigured(),
				"storage":    storageClient != nil,
				"auth":       jwksVerifier != nil || cfg.JWT.Secret != "",
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	api := app.Group("/api", apiAuth)
	api.Post("/videos", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), videosHandler.Upload)

	pipeline := api.Group("/pipeline")
	pipeline.Post("/start", rateLimiter.PipelineLimit(cfg.RateLimit.PipelinePerHour), pipelineHandler.Start)
	pipeline.Get("/status/:jobId", pipelineHandler.Status)
	pipeline.Get("/report/:jobId", pipelineHandler.Report)
	pipeline.Post("/cancel/:jobId", pipelineHandler.Cancel)

	captions := api.Group("/captions", rateLimiter.CaptionsLimit(cfg.RateLimit.CaptionsPerMin))
	captions.Post("/generate", captionsHandler.Generate)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("jobId"))
	}))

	pipelineWorker := worker.NewPipelineWorker(pipelineService, storageClient, elevenLabsClient, anthropicClient, hub, cfg)
	go runWorker(redisOpt, cfg.Server.LogLevel, pipelineWorker)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// selectAuth picks the request auth strategy. Behind the gateway, Traefik's
// ForwardAuth already verified the token and stamped identity headers;
// otherwise the service verifies bearer tokens itself.
func selectAuth(cfg *config.Config, jwksVerifier *auth.JWKSVerifier) fiber.Handler {
	if cfg.Gateway.Enabled {
		log.Println("Info: Gateway mode enabled, using header-based auth")
		return middleware.GatewayAuthMiddleware()
	}

	switch {
	case jwksVerifier != nil && cfg.JWT.Secret != "":
		return middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret).Authenticate()
	case jwksVerifier != nil:
		return middleware.NewAuthMiddleware(jwksVerifier).Authenticate()
	default:
		return middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret).Authenticate()
	}
}

func requestLogFormat(logLevel string) string {
	if strings.EqualFold(logLevel, "debug") {
		log.Println("Debug logging enabled")
		return "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
	}
	return "[${time}] ${status} - ${latency} ${method} ${path}\n"
}

func runWorker(redisOpt asynq.RedisClientOpt, logLevel string, pipelineWorker *worker.PipelineWorker) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		// Runs are I/O bound but each one holds large media in memory.
		Concurrency: 4,
		Queues:      map[string]int{"pipeline": 10},
		LogLevel:    asynqLogLevel(logLevel),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypePipeline, pipelineWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func asynqLogLevel(logLevel string) asynq.LogLevel {
	switch strings.ToLower(logLevel) {
	case "debug":
		return asynq.DebugLevel
	case "warn":
		return asynq.WarnLevel
	case "error":
		return asynq.ErrorLevel
	default:
		return asynq.InfoLevel
	}
}

// fallbackErrorHandler catches errors that escape the handlers, mostly
// fiber-internal ones like body-limit rejections.
func fallbackErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(status).JSON(response.ErrorResponse{
		Error: response.ErrorDetail{Code: response.CodeServiceError, Message: message},
	})
}
