// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-careers-agent/internal/agent"
	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/tools"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	// ProviderLLM makes the resolver share the agent's client
	ProviderLLM = "llm"
)

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Browser  BrowserConfig  `yaml:"browser"`
	Agent    AgentConfig    `yaml:"agent"`
	Retry    RetryConfig    `yaml:"retry"`
	Telegram TelegramConfig `yaml:"telegram"`
	//Paths
	OutputPath string `yaml:"output_path"`
	LogLevel   string `yaml:"log_level"`

	// Warnings found while loading, logged by the caller once its logger exists
	Warnings []string `yaml:"-"`
}

type LLMConfig struct {
	Provider         string  `yaml:"provider"`
	ResolverProvider string  `yaml:"resolver_provider"`
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Model            string  `yaml:"model"`
	Temperature      float32 `yaml:"temperature"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type BrowserConfig struct {
	Headless      bool     `yaml:"headless"`
	SlowMoMs      int      `yaml:"slow_mo_ms"`
	TimeoutMs     int      `yaml:"timeout_ms"`
	SettleMs      int      `yaml:"settle_ms"`
	UserAgent     string   `yaml:"user_agent"`
	Viewport      Viewport `yaml:"viewport"`
	CookiesPath   string   `yaml:"cookies_path"`
	ScreenshotDir string   `yaml:"screenshot_dir"`
}

type AgentConfig struct {
	MaxTurns         int      `yaml:"max_turns"`
	MaxUnloggedCalls int      `yaml:"max_unlogged_calls"`
	SearchEngines    []string `yaml:"search_engines"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Enabled reports whether a run summary should be sent
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Load reads .env, then the YAML file at path (a missing file is fine), applies env
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("no config file at %s, using env and defaults", path))
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	//Override with env vars
	if v := firstEnv("LLM_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("GROQ_API_KEY"); v != "" && strings.EqualFold(cfg.LLM.Provider, ProviderGroq) {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		cfg.Browser.Headless = headless
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func applyDefaults(cfg *Config) {
	//Set default values if not set
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
	}
	if cfg.LLM.Provider == ProviderGroq {
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = ai.GroqBaseURL
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = ai.GroqModel
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = ai.DefaultModel
	}
	cfg.LLM.ResolverProvider = strings.ToLower(cfg.LLM.ResolverProvider)
	if cfg.LLM.ResolverProvider == "" {
		cfg.LLM.ResolverProvider = ProviderLLM
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = ai.DefaultGeminiModel
	}

	if cfg.Browser.SlowMoMs == 0 {
		cfg.Browser.SlowMoMs = 100
	}
	if cfg.Browser.TimeoutMs == 0 {
		cfg.Browser.TimeoutMs = 30000
	}
	if cfg.Browser.SettleMs == 0 {
		cfg.Browser.SettleMs = 1000
	}
	if cfg.Browser.UserAgent == "" {
		cfg.Browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.Browser.Viewport.Width == 0 || cfg.Browser.Viewport.Height == 0 {
		cfg.Browser.Viewport = Viewport{Width: 1600, Height: 900}
	}

	if cfg.Agent.MaxTurns == 0 {
		cfg.Agent.MaxTurns = agent.DefaultMaxTurns
	}
	if cfg.Agent.MaxUnloggedCalls == 0 {
		cfg.Agent.MaxUnloggedCalls = tools.DefaultMaxUnlogged
	}
	if len(cfg.Agent.SearchEngines) == 0 {
		cfg.Agent.SearchEngines = tools.DefaultSearchEngines
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 3 * time.Second
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = "output.json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	//Validate required fields
	var errs []error
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGroq:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGroq, c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY (or LLM_API_KEY / llm.api_key) is required"))
	}
	switch c.LLM.ResolverProvider {
	case ProviderLLM:
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when llm.resolver_provider is gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.resolver_provider must be %q or %q, got %q", ProviderLLM, ProviderGemini, c.LLM.ResolverProvider))
	}
	if c.Agent.MaxTurns < 0 || c.Agent.MaxUnloggedCalls < 0 || c.Retry.MaxAttempts < 0 || c.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("agent and retry limits must not be negative"))
	}
	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err))
	}
	return errors.Join(errs...)
}

func (b BrowserConfig) SlowMo() time.Duration  { return time.Duration(b.SlowMoMs) * time.Millisecond }
func (b BrowserConfig) Timeout() time.Duration { return time.Duration(b.TimeoutMs) * time.Millisecond }
func (b BrowserConfig) Settle() time.Duration  { return time.Duration(b.SettleMs) * time.Millisecond }
