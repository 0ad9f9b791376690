package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Generate  GenerateConfig  `yaml:"generate" mapstructure:"generate"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	ChatModel       string `yaml:"chat_model" mapstructure:"chat_model"`
	ImageModel      string `yaml:"image_model" mapstructure:"image_model"`
	ImagesPerMinute int    `yaml:"images_per_minute" mapstructure:"images_per_minute"`
}

// AnthropicConfig holds Anthropic API settings for the alternative
// analysis backend.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GenerateConfig controls plan and media generation.
type GenerateConfig struct {
	Provider     string  `yaml:"provider" mapstructure:"provider"` // "openai" or "anthropic"
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens    int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	ImageSize    string  `yaml:"image_size" mapstructure:"image_size"`
	ImageQuality string  `yaml:"image_quality" mapstructure:"image_quality"`
	ImageStyle   string  `yaml:"image_style" mapstructure:"image_style"` // overrides the default style block
}

// ExportConfig controls PDF/ZIP output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	FontPath  string `yaml:"font_path" mapstructure:"font_path"` // TTF with Hangul glyphs for the PDF report
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads config.yaml (optional) and POLICY_* environment variables,
// applying defaults for every tunable.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POLICY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/policies.db")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o")
	v.SetDefault("openai.image_model", "dall-e-3")
	v.SetDefault("openai.images_per_minute", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("generate.provider", "openai")
	v.SetDefault("generate.temperature", 0.7)
	v.SetDefault("generate.max_tokens", 4000)
	v.SetDefault("generate.image_size", "1024x1024")
	v.SetDefault("generate.image_quality", "standard")
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is sufficient for the given
// operation ("generate" needs an API key for the selected provider;
// "image" always needs the OpenAI key).
func (c *Config) Validate(op string) error {
	switch op {
	case "generate":
		switch c.Generate.Provider {
		case "openai":
			if c.OpenAI.Key == "" {
				return eris.New("config: openai key is required (POLICY_OPENAI_KEY)")
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				return eris.New("config: anthropic key is required (POLICY_ANTHROPIC_KEY)")
			}
		default:
			return eris.Errorf("config: unknown generate provider %q", c.Generate.Provider)
		}
	case "image":
		if c.OpenAI.Key == "" {
			return eris.New("config: openai key is required for image generation (POLICY_OPENAI_KEY)")
		}
	}
	return nil
}

// InitLogger builds the global zap logger from config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
