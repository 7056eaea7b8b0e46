package e2e

import (
	"bufio"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/config"
	"github.com/dubflow/api/internal/handler"
	"github.com/dubflow/api/internal/middleware"
	"github.com/dubflow/api/internal/service"
)

// loadEnvFile loads KEY=VALUE pairs from ../.env for real-API tests.
func loadEnvFile(t *testing.T) {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	envPath := filepath.Join(filepath.Dir(filename), "..", ".env")

	f, err := os.Open(envPath)
	if err != nil {
		t.Skipf("skipping: .env file not found at %s", envPath)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			os.Setenv(parts[0], parts[1])
		}
	}
}

// setupCaptionsRealApp creates an app with a real Anthropic client.
func setupCaptionsRealApp(t *testing.T) *fiber.App {
	t.Helper()
	loadEnvFile(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Anthropic.APIKey == "" {
		t.Skip("skipping: ANTHROPIC_API_KEY not configured")
	}

	t.Logf("Anthropic config: baseURL=%s model=%s", cfg.Anthropic.BaseURL, cfg.Anthropic.Model)

	// Redis for rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
		DB:   15,
	})

	validate := validator.New()

	anthropicClient := client.NewAnthropicClient(&cfg.Anthropic)
	if !anthropicClient.IsConfigured() {
		t.Skip("skipping: Anthropic client not configured")
	}

	captionService := service.NewCaptionService(anthropicClient)
	captionsHandler := handler.NewCaptionsHandler(captionService, validate)

	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New()

	api := app.Group("/api", authMiddleware.Authenticate())
	captions := api.Group("/captions", rateLimiter.CaptionsLimit(10000))
	captions.Post("/generate", captionsHandler.Generate)

	return app
}

// TestCaptionsGenerate_RealAnthropic tests caption generation against the
// real Anthropic API.
func TestCaptionsGenerate_RealAnthropic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real Anthropic API test in short mode")
	}

	app := setupCaptionsRealApp(t)
	token := generateToken(t)
	headers := map[string]string{"Authorization": "Bearer " + token}

	body := `{
		"transcript": "Hello friends, today we will talk about a new topic. This topic is very interesting and you will learn a lot from it. Watch the video till the end and share your thoughts in the comments."
	}`

	t.Log("Sending caption generate request to real Anthropic API...")
	resp, err := doRequest(app, http.MethodPost, "/api/captions/generate", body, headers)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)

	instagram, ok := result["instagram"].(string)
	if !ok || instagram == "" {
		t.Fatalf("expected 'instagram' caption, got: %v", result)
	}
	linkedin, ok := result["linkedin"].(string)
	if !ok || linkedin == "" {
		t.Fatalf("expected 'linkedin' caption, got: %v", result)
	}

	t.Logf("Instagram caption:\n%s", instagram)
	t.Logf("LinkedIn caption:\n%s", linkedin)
}
