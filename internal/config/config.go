package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for studypack.
type Config struct {
	LLM          LLMConfig
	Output       OutputConfig
	Inbox        InboxConfig
	Notification NotificationConfig
}

// LLMConfig selects and tunes the hosted generation service. It is built once
// at startup and handed to the provider constructor.
type LLMConfig struct {
	Provider    string        // "gemini" or "openai"
	BaseURL     string        // empty means the provider default
	Model       string        // model identifier, e.g. "gemini-2.5-flash"
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-request timeout
	MaxTokens   int
	Temperature float64
	MaxRetries  int           // extra attempts after a transient failure; 0 disables retry
	RetryDelay  time.Duration // delay before the first retry, doubled afterwards
	MinDelay    time.Duration // minimum gap between two calls to the provider
}

// OutputConfig controls where artifacts end up.
type OutputConfig struct {
	VisualizationDir string `yaml:"visualization_dir"`
	FontPath         string `yaml:"font_path"` // optional TTF for concept maps
	Database         string `yaml:"database"`
}

// InboxConfig describes the directory watched by `studypack watch`.
type InboxConfig struct {
	Dir             string
	Interval        time.Duration
	IncludeKeywords []string
	ExcludeKeywords []string
	Extensions      []string
	Retention       time.Duration // archived packs older than this are pruned; 0 keeps everything
	Pause           time.Duration // gap between two inboxes in one cycle
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	LLM          rawLLMConfig       `yaml:"llm"`
	Output       OutputConfig       `yaml:"output"`
	Inbox        rawInboxConfig     `yaml:"inbox"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawLLMConfig struct {
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Timeout     string   `yaml:"timeout"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	MaxRetries  int      `yaml:"max_retries"`
	RetryDelay  string   `yaml:"retry_delay"`
	MinDelay    string   `yaml:"min_delay"`
}

type rawInboxConfig struct {
	Dir             string   `yaml:"dir"`
	Interval        string   `yaml:"interval"`
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Extensions      []string `yaml:"extensions"`
	Retention       string   `yaml:"retention"`
	Pause           string   `yaml:"pause"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config is loaded first so ${VAR} references resolve;
// variables already set in the environment win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	llmTimeout, err := parseDuration("llm.timeout", raw.LLM.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("llm.retry_delay", raw.LLM.RetryDelay, 5*time.Second)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("llm.min_delay", raw.LLM.MinDelay, 0)
	if err != nil {
		return nil, err
	}
	interval, err := parseDuration("inbox.interval", raw.Inbox.Interval, 10*time.Minute)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("inbox.retention", raw.Inbox.Retention, 0)
	if err != nil {
		return nil, err
	}
	pause, err := parseDuration("inbox.pause", raw.Inbox.Pause, 0)
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(raw.LLM.Provider))
	if provider == "" {
		provider = ProviderGemini
	}

	baseURL := raw.LLM.BaseURL
	if baseURL == "" && provider == ProviderOpenAI {
		baseURL = defaultOpenAIBaseURL
	}

	llmModel := raw.LLM.Model
	if llmModel == "" {
		switch provider {
		case ProviderOpenAI:
			llmModel = defaultOpenAIModel
		case ProviderGemini:
			llmModel = defaultGeminiModel
		}
	}

	apiKey := raw.LLM.APIKey
	if apiKey == "" {
		apiKey = apiKeyFromEnv(provider)
	}

	maxTokens := raw.LLM.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}

	var temperature float64 // greedy decoding by default
	if raw.LLM.Temperature != nil {
		temperature = *raw.LLM.Temperature
	}

	output := raw.Output
	if output.VisualizationDir == "" {
		output.VisualizationDir = "visualizations"
	}
	if output.Database == "" {
		output.Database = "studypack.db"
	}

	extensions := raw.Inbox.Extensions
	if len(extensions) == 0 {
		extensions = []string{".pdf", ".txt"}
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	return &Config{
		LLM: LLMConfig{
			Provider:    provider,
			BaseURL:     baseURL,
			Model:       llmModel,
			APIKey:      apiKey,
			Timeout:     llmTimeout,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			MaxRetries:  raw.LLM.MaxRetries,
			RetryDelay:  retryDelay,
			MinDelay:    minDelay,
		},
		Output: output,
		Inbox: InboxConfig{
			Dir:             raw.Inbox.Dir,
			Interval:        interval,
			IncludeKeywords: raw.Inbox.IncludeKeywords,
			ExcludeKeywords: raw.Inbox.ExcludeKeywords,
			Extensions:      extensions,
			Retention:       retention,
			Pause:           pause,
		},
		Notification: notification,
	}, nil
}

// apiKeyFromEnv falls back to the conventional variable for the provider.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case ProviderGemini:
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			return v
		}
		return os.Getenv("GOOGLE_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	switch cfg.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (or set the provider's API key env var)")
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.MinDelay < 0 {
		return fmt.Errorf("llm.min_delay must not be negative, got %v", cfg.LLM.MinDelay)
	}

	if cfg.Inbox.Interval < time.Minute {
		return fmt.Errorf("inbox.interval must be at least 1m, got %v", cfg.Inbox.Interval)
	}
	if cfg.Inbox.Pause < 0 {
		return fmt.Errorf("inbox.pause must not be negative, got %v", cfg.Inbox.Pause)
	}
	if cfg.Inbox.Retention < 0 {
		return fmt.Errorf("inbox.retention must not be negative, got %v", cfg.Inbox.Retention)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}
