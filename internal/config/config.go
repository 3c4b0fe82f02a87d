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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Segment    SegmentConfig    `yaml:"segment" mapstructure:"segment"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	RentRoll   RentRollConfig   `yaml:"rentroll" mapstructure:"rentroll"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings for the domain extractor.
type AnthropicConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	Model      string `yaml:"model" mapstructure:"model"`
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// SegmentConfig configures clause segmentation.
type SegmentConfig struct {
	MinSegmentChars int  `yaml:"min_segment_chars" mapstructure:"min_segment_chars"`
	MergeAdjacent   bool `yaml:"merge_adjacent" mapstructure:"merge_adjacent"`
	MergePageWindow int  `yaml:"merge_page_window" mapstructure:"merge_page_window"`
}

// ExtractConfig configures the extraction stages.
type ExtractConfig struct {
	// DomainEnabled turns the external strategy on; pattern extraction
	// always runs.
	DomainEnabled     bool    `yaml:"domain_enabled" mapstructure:"domain_enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// RentRollConfig configures schedule generation.
type RentRollConfig struct {
	DefaultCPIRate float64 `yaml:"default_cpi_rate" mapstructure:"default_cpi_rate"`
}

// ProjectionConfig configures the escalation projection engine.
type ProjectionConfig struct {
	Years        int     `yaml:"years" mapstructure:"years"`
	DiscountRate float64 `yaml:"discount_rate" mapstructure:"discount_rate"`
}

// ExportConfig configures report output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "lease.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_documents", 4)
	v.SetDefault("segment.min_segment_chars", 50)
	v.SetDefault("segment.merge_adjacent", true)
	v.SetDefault("segment.merge_page_window", 2)
	v.SetDefault("extract.domain_enabled", true)
	v.SetDefault("extract.requests_per_second", 2.0)
	v.SetDefault("rentroll.default_cpi_rate", 3.0)
	v.SetDefault("projection.years", 5)
	v.SetDefault("projection.discount_rate", 0.05)
	v.SetDefault("export.dir", ".")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.max_retries", 3)

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

// InitLogger initializes the global zap logger.
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
