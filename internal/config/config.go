// Package config loads every service setting from the environment. Nothing
// in the pipeline hides behind an implicit default: the model version
// string, timeouts and retry budgets are all explicit values here.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all service configuration.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Analysis AnalysisConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	analysis, err := loadAnalysisConfig(ai.Model)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Analysis: analysis}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// AnalysisConfig bounds the compatibility pipeline.
type AnalysisConfig struct {
	// ModelVersion is stamped into every result's metadata.
	ModelVersion string
	// Timeout applies per completion attempt.
	Timeout time.Duration
	// MaxRetries is the transient-failure retry budget after the first
	// attempt.
	MaxRetries int
	// RetryBackoff is the base backoff between retries.
	RetryBackoff time.Duration
	// Reprompt enables the single re-prompt after unparseable output.
	Reprompt bool
	// MaxConcurrentCards bounds the stage-1 fan-out.
	MaxConcurrentCards int
}

func loadAnalysisConfig(modelName string) (AnalysisConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("ANALYSIS_TIMEOUT"); err != nil {
		return AnalysisConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	retries := 2
	if override, err := parseOptionalIntEnv("ANALYSIS_MAX_RETRIES"); err != nil {
		return AnalysisConfig{}, err
	} else if override != nil && *override >= 0 {
		retries = *override
	}

	backoffMillis := 500
	if override, err := parseOptionalIntEnv("ANALYSIS_RETRY_BACKOFF_MS"); err != nil {
		return AnalysisConfig{}, err
	} else if override != nil && *override > 0 {
		backoffMillis = *override
	}

	reprompt, err := parseBoolEnv("ANALYSIS_REPROMPT", true)
	if err != nil {
		return AnalysisConfig{}, err
	}

	concurrency := 3
	if override, err := parseOptionalIntEnv("ANALYSIS_MAX_CONCURRENT_CARDS"); err != nil {
		return AnalysisConfig{}, err
	} else if override != nil && *override > 0 {
		concurrency = *override
	}

	version := strings.TrimSpace(os.Getenv("ANALYSIS_MODEL_VERSION"))
	if version == "" {
		version = modelName
	}

	return AnalysisConfig{
		ModelVersion:       version,
		Timeout:            time.Duration(timeoutSeconds) * time.Second,
		MaxRetries:         retries,
		RetryBackoff:       time.Duration(backoffMillis) * time.Millisecond,
		Reprompt:           reprompt,
		MaxConcurrentCards: concurrency,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
