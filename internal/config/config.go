// Package config holds the explicit configuration value handed to constructors
// and resolves the provider credential.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/resume-rater/internal/ai"
	"github.com/spigell/resume-rater/internal/secrets"
)

const (
	DefaultDataDir      = "data"
	DefaultSecretsFile  = ".streamlit/secrets.toml"
	DefaultMaxLogLength = 200

	EvaluationLogCSV    = "csv"
	EvaluationLogSQLite = "sqlite"

	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvProvider     = "RESUME_RATER_PROVIDER"
)

// ErrConfiguration is matched by every *Error.
var ErrConfiguration = errors.New("configuration error")

// Error reports an unusable configuration. It is fatal at startup.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrConfiguration, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

type Config struct {
	Provider     string         `mapstructure:"provider"`
	DataDir      string         `mapstructure:"data-dir"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	SecretsFile  string         `mapstructure:"secrets-file"`
	Storage      *StorageConfig `mapstructure:"storage"`
	Gemini       *GeminiConfig  `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig  `mapstructure:"openai"`
}

type StorageConfig struct {
	EvaluationLog string `mapstructure:"evaluation-log"`
}

type GeminiConfig struct {
	Model      string `mapstructure:"model"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type OpenAIConfig struct {
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base-url"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("provider", string(ai.ProviderGemini))
	v.SetDefault("data-dir", DefaultDataDir)
	v.SetDefault("max-log-length", DefaultMaxLogLength)
	v.SetDefault("secrets-file", DefaultSecretsFile)
	v.SetDefault("storage.evaluation-log", EvaluationLogCSV)
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base-url", "https://api.openai.com/v1")

	if err := v.BindEnv("provider", EnvProvider); err != nil {
		return fmt.Errorf("binding %s environment variable: %w", EnvProvider, err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg *Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Reason: "decoding configuration", Err: err}
	}
	if cfg == nil {
		cfg = &Config{}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Gemini == nil {
		c.Gemini = &GeminiConfig{}
	}
	if c.OpenAI == nil {
		c.OpenAI = &OpenAIConfig{}
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = DefaultDataDir
	}
	if c.MaxLogLength <= 0 {
		c.MaxLogLength = DefaultMaxLogLength
	}
	c.Storage.EvaluationLog = strings.ToLower(strings.TrimSpace(c.Storage.EvaluationLog))
	if c.Storage.EvaluationLog == "" {
		c.Storage.EvaluationLog = EvaluationLogCSV
	}
}

// Validate checks the provider name and the storage backend.
func (c *Config) Validate() error {
	if _, err := ai.ParseProvider(c.Provider); err != nil {
		return &Error{Reason: "provider", Err: err}
	}

	switch c.Storage.EvaluationLog {
	case EvaluationLogCSV, EvaluationLogSQLite:
	default:
		return &Error{Reason: fmt.Sprintf("unsupported evaluation log %q (expected csv or sqlite)", c.Storage.EvaluationLog)}
	}

	return nil
}

// ProviderKind returns the selected provider. Validate must have passed.
func (c *Config) ProviderKind() ai.ProviderKind {
	kind, _ := ai.ParseProvider(c.Provider)
	return kind
}

// Path joins elem onto the data directory.
func (c *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.DataDir}, elem...)...)
}

// APIKey resolves the credential of the selected provider: the environment
// first, then the local secret store, then the provider's api-key-file.
func (c *Config) APIKey(env, store secrets.Store) (string, error) {
	var (
		name    string
		envKey  string
		keyFile string
	)

	switch c.ProviderKind() {
	case ai.ProviderOpenAI:
		name, envKey, keyFile = "openai api key", EnvOpenAIAPIKey, c.OpenAI.APIKeyFile
	default:
		name, envKey, keyFile = "gemini api key", EnvGeminiAPIKey, c.Gemini.APIKeyFile
	}

	key, err := secrets.Resolve(name, envKey, env, store)
	if err == nil {
		return key, nil
	}

	if strings.TrimSpace(keyFile) != "" {
		key, fileErr := secrets.Load(secrets.Source{Name: name, File: keyFile})
		if fileErr != nil {
			return "", &Error{Reason: "loading " + name, Err: fileErr}
		}
		return key, nil
	}

	return "", &Error{
		Reason: fmt.Sprintf("missing credential for provider %s", c.ProviderKind()),
		Err:    fmt.Errorf("%w (set %s or add it to %s)", err, envKey, c.SecretsFile),
	}
}
