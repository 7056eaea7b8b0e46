package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dubflow/api/internal/auth"
	"github.com/dubflow/api/internal/handler"
	"github.com/dubflow/api/internal/middleware"
	"github.com/dubflow/api/internal/service"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testRedisAddr = "localhost:6379"
	testRedisDB   = 15 // separate DB so test keys never touch dev data
)

type testApp struct {
	app *fiber.App
}

// setupApp wires the same routes as the server binary, but with every
// external client left unconfigured so services answer in mock mode.
// Requires a local Redis.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{Addr: testRedisAddr, DB: testRedisDB})
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: testRedisAddr, DB: testRedisDB})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	pipelineService := service.NewPipelineService(redisClient, asynqClient)
	captionService := service.NewCaptionService(nil)
	videoService := service.NewVideoService(t.TempDir())

	pipelineHandler := handler.NewPipelineHandler(pipelineService, validate)
	captionsHandler := handler.NewCaptionsHandler(captionService, validate)
	videosHandler := handler.NewVideosHandler(videoService)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)

	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{BodyLimit: 500 * 1024 * 1024})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "dubflow-api", "timestamp": 1234567890})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"elevenlabs": false,
				"anthropic":  false,
				"storage":    false,
				"auth":       true,
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	// Rate limits are set far above what any test can hit.
	api := app.Group("/api", authMiddleware.Authenticate())
	api.Post("/videos", rateLimiter.UploadLimit(10000), videosHandler.Upload)

	pipeline := api.Group("/pipeline")
	pipeline.Post("/start", rateLimiter.PipelineLimit(10000), pipelineHandler.Start)
	pipeline.Get("/status/:jobId", pipelineHandler.Status)
	pipeline.Get("/report/:jobId", pipelineHandler.Report)
	pipeline.Post("/cancel/:jobId", pipelineHandler.Cancel)

	captions := api.Group("/captions", rateLimiter.CaptionsLimit(10000))
	captions.Post("/generate", captionsHandler.Generate)

	return &testApp{app: app}
}

// generateToken signs a legacy HMAC token accepted by the test app's auth.
func generateToken(t *testing.T) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.LegacyClaims{
		UserID:           "e2e-user",
		Email:            "e2e@dubflow.dev",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "dubflow-api"},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func doRequest(app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, error) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, r)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return app.Test(req, -1)
}

func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + generateToken(t),
	})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(b)
}

func parseJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw := readBody(t, resp)
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("parse JSON: %v\nbody: %s", err, raw)
	}
	return out
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}
