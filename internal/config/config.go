package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv, AppPort, BaseURL string
	DBDSN                    string
	RedisAddr                string
	RedisDB                  int
	CORSOrigins              []string

	OpenAIKey, OpenAIModel       string
	AnthropicKey, AnthropicModel string
	GeminiKey, GeminiModel       string
	ProviderDryRun               bool

	OpenAIRPS   int
	OpenAIBurst int

	GenMaxQuestions   int
	GenMaxTokens      int
	GenTemperature    float64
	GenAttemptTimeout time.Duration
	GenCacheTTL       time.Duration
	GenDailyQuota     int
	GenLockTTL        time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:            get("APP_ENV", "dev"),
		AppPort:           get("APP_PORT", "8080"),
		BaseURL:           get("APP_BASE_URL", "http://localhost:8080"),
		DBDSN:             must("DB_DSN"),
		RedisAddr:         get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:           atoi(get("REDIS_DB", "0")),
		CORSOrigins:       split(get("CORS_ORIGINS", "http://localhost:5173")),
		OpenAIKey:         get("OPENAI_API_KEY", ""),
		OpenAIModel:       get("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicKey:      get("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    get("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		GeminiKey:         get("GEMINI_API_KEY", ""),
		GeminiModel:       get("GEMINI_MODEL", "gemini-2.5-flash"),
		ProviderDryRun:    parseBool(get("PROVIDER_DRY_RUN", "false")),
		OpenAIRPS:         atoi(get("OPENAI_RPS", "2")),
		OpenAIBurst:       atoi(get("OPENAI_BURST", "2")),
		GenMaxQuestions:   atoi(get("GEN_MAX_QUESTIONS", "10")),
		GenMaxTokens:      atoi(get("GEN_MAX_TOKENS", "4096")),
		GenTemperature:    atof(get("GEN_TEMPERATURE", "0.7")),
		GenAttemptTimeout: mustDuration(get("GEN_ATTEMPT_TIMEOUT", "90s")),
		GenCacheTTL:       mustDuration(get("GEN_CACHE_TTL", "24h")),
		GenDailyQuota:     atoi(get("GEN_DAILY_QUOTA", "50")),
		GenLockTTL:        mustDuration(get("GEN_LOCK_TTL", "5m")),
	}
	return c
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}

func atoi(s string) int                   { i, _ := strconv.Atoi(s); return i }
func atof(s string) float64               { f, _ := strconv.ParseFloat(s, 64); return f }
func parseBool(s string) bool             { b, _ := strconv.ParseBool(s); return b }
func mustDuration(s string) time.Duration { d, _ := time.ParseDuration(s); return d }

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
