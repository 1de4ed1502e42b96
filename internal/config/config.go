// Package config loads service configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the service reads from the environment.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string
	// AllowedOrigins restricts browser origins; empty allows all.
	AllowedOrigins []string

	// DeepgramModel overrides the default transcription model.
	DeepgramModel string
	// OpenAIAPIKey overrides the key the OpenAI client reads from its own
	// environment variable. Optional.
	OpenAIAPIKey string

	// MySQLDSN enables durable storage. Empty falls back to the in-memory
	// store, which is only suitable for development.
	MySQLDSN string

	// ResumeServiceURL is the base URL of the candidate context service.
	ResumeServiceURL string

	// FallbackPoolPath points at a YAML file of scripted questions used when
	// the policy engine is unreachable. Empty uses the compiled-in pool.
	FallbackPoolPath string

	// Per-session defaults; zero values defer to the orchestrator's own
	// defaults.
	MaxQuestions       int
	MinAnswerSeconds   int
	IdleTimeoutSeconds int
	EndpointSilenceMs  int
}

// Load reads the configuration. A missing .env file is not an error; real
// deployments set the environment directly.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:       envOr("LISTEN_ADDR", ":8080"),
		DeepgramModel:    os.Getenv("DEEPGRAM_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		MySQLDSN:         os.Getenv("MYSQL_DSN"),
		ResumeServiceURL: envOr("RESUME_SERVICE_URL", "http://localhost:9000"),
		FallbackPoolPath: os.Getenv("FALLBACK_POOL_PATH"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	var err error
	if cfg.MaxQuestions, err = envIntOr("MAX_QUESTIONS", 0); err != nil {
		return Config{}, err
	}
	if cfg.MinAnswerSeconds, err = envIntOr("MIN_ANSWER_SECONDS", 0); err != nil {
		return Config{}, err
	}
	if cfg.IdleTimeoutSeconds, err = envIntOr("IDLE_TIMEOUT_SECONDS", 0); err != nil {
		return Config{}, err
	}
	if cfg.EndpointSilenceMs, err = envIntOr("ENDPOINT_SILENCE_MS", 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
