package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Storage    StorageConfig
	ElevenLabs ElevenLabsConfig
	Anthropic  AnthropicConfig
	Pipeline   PipelineConfig
	OIDC       OIDCConfig
	Gateway    GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	CaptionsPerMin  int
	PipelinePerHour int
	UploadPerHour   int
}

// StorageConfig targets an S3-compatible object store (Cloudflare R2, MinIO).
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type ElevenLabsConfig struct {
	APIKey   string
	BaseURL  string
	STTModel string
	TTSModel string
	VoiceID  string
}

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// PipelineConfig carries the fixed run parameters: where uploads and artifacts
// land on disk and which language pair the pipeline converts between.
type PipelineConfig struct {
	InputDir       string
	OutputDir      string
	SourceLanguage string
	TargetLanguage string
}

type OIDCConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

// envBindings maps nested viper keys to their environment variables.
var envBindings = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.env":                  "SERVER_ENV",
	"server.log_level":            "LOG_LEVEL",
	"server.api_domain":           "API_DOMAIN",
	"redis.addr":                  "REDIS_ADDR",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.expiration":              "JWT_EXPIRATION",
	"ratelimit.captions_per_min":  "RATELIMIT_CAPTIONS_PER_MIN",
	"ratelimit.pipeline_per_hour": "RATELIMIT_PIPELINE_PER_HOUR",
	"ratelimit.upload_per_hour":   "RATELIMIT_UPLOAD_PER_HOUR",
	"storage.account_id":          "STORAGE_ACCOUNT_ID",
	"storage.access_key_id":       "STORAGE_ACCESS_KEY_ID",
	"storage.secret_access_key":   "STORAGE_SECRET_ACCESS_KEY",
	"storage.bucket_name":         "STORAGE_BUCKET_NAME",
	"storage.public_url":          "STORAGE_PUBLIC_URL",
	"elevenlabs.api_key":          "ELEVENLABS_API_KEY",
	"elevenlabs.base_url":         "ELEVENLABS_BASE_URL",
	"elevenlabs.stt_model":        "ELEVENLABS_STT_MODEL",
	"elevenlabs.tts_model":        "ELEVENLABS_TTS_MODEL",
	"elevenlabs.voice_id":         "ELEVENLABS_VOICE_ID",
	"anthropic.api_key":           "ANTHROPIC_API_KEY",
	"anthropic.base_url":          "ANTHROPIC_BASE_URL",
	"anthropic.model":             "ANTHROPIC_MODEL",
	"anthropic.max_tokens":        "ANTHROPIC_MAX_TOKENS",
	"pipeline.input_dir":          "PIPELINE_INPUT_DIR",
	"pipeline.output_dir":         "PIPELINE_OUTPUT_DIR",
	"pipeline.source_language":    "PIPELINE_SOURCE_LANGUAGE",
	"pipeline.target_language":    "PIPELINE_TARGET_LANGUAGE",
	"oidc.domain":                 "OIDC_DOMAIN",
	"oidc.client_id":              "OIDC_CLIENT_ID",
	"oidc.issuer":                 "OIDC_ISSUER",
	"gateway.enabled":             "GATEWAY_ENABLED",
}

var defaults = map[string]any{
	"server.port":      "8000",
	"server.env":       "development",
	"server.log_level": "info",

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":     "change-me-in-production",
	"jwt.expiration": 24,

	"ratelimit.captions_per_min":  30,
	"ratelimit.pipeline_per_hour": 10,
	"ratelimit.upload_per_hour":   50,

	"elevenlabs.base_url":  "https://api.elevenlabs.io",
	"elevenlabs.stt_model": "scribe_v2",
	"elevenlabs.tts_model": "eleven_multilingual_v2",
	"elevenlabs.voice_id":  "ipTsYx5BgSDPgZ2oCy9M",

	"anthropic.base_url":   "https://api.anthropic.com",
	"anthropic.model":      "claude-haiku-4-5",
	"anthropic.max_tokens": 4096,

	"pipeline.input_dir":       "input",
	"pipeline.output_dir":      "output",
	"pipeline.source_language": "hin",
	"pipeline.target_language": "eng",

	"gateway.enabled": false,
}

// Secrets that Docker Swarm may deliver as files via FOO_FILE variables.
var secretEnvKeys = []string{
	"REDIS_PASSWORD",
	"ELEVENLABS_API_KEY",
	"ANTHROPIC_API_KEY",
	"STORAGE_ACCOUNT_ID",
	"STORAGE_ACCESS_KEY_ID",
	"STORAGE_SECRET_ACCESS_KEY",
	"OIDC_CLIENT_ID",
}

// readSecret promotes FOO_FILE file contents into FOO. A directly set FOO
// always wins over the file.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	path := os.Getenv(envKey + "_FILE")
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

func Load() (*Config, error) {
	for _, key := range secretEnvKeys {
		readSecret(key)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		_ = viper.BindEnv(key, env)
	}
	for key, val := range defaults {
		viper.SetDefault(key, val)
	}

	// The config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			CaptionsPerMin:  viper.GetInt("ratelimit.captions_per_min"),
			PipelinePerHour: viper.GetInt("ratelimit.pipeline_per_hour"),
			UploadPerHour:   viper.GetInt("ratelimit.upload_per_hour"),
		},
		Storage: StorageConfig{
			AccountID:       viper.GetString("storage.account_id"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			BucketName:      viper.GetString("storage.bucket_name"),
			PublicURL:       viper.GetString("storage.public_url"),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:   viper.GetString("elevenlabs.api_key"),
			BaseURL:  viper.GetString("elevenlabs.base_url"),
			STTModel: viper.GetString("elevenlabs.stt_model"),
			TTSModel: viper.GetString("elevenlabs.tts_model"),
			VoiceID:  viper.GetString("elevenlabs.voice_id"),
		},
		Anthropic: AnthropicConfig{
			APIKey:    viper.GetString("anthropic.api_key"),
			BaseURL:   viper.GetString("anthropic.base_url"),
			Model:     viper.GetString("anthropic.model"),
			MaxTokens: viper.GetInt("anthropic.max_tokens"),
		},
		Pipeline: PipelineConfig{
			InputDir:       viper.GetString("pipeline.input_dir"),
			OutputDir:      viper.GetString("pipeline.output_dir"),
			SourceLanguage: viper.GetString("pipeline.source_language"),
			TargetLanguage: viper.GetString("pipeline.target_language"),
		},
		OIDC: OIDCConfig{
			Domain:   viper.GetString("oidc.domain"),
			ClientID: viper.GetString("oidc.client_id"),
			Issuer:   viper.GetString("oidc.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
