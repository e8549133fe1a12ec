package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Tools      ToolsConfig      `yaml:"tools" json:"tools"`
	Conversion ConversionConfig `yaml:"conversion" json:"conversion"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Delivery   DeliveryConfig   `yaml:"delivery" json:"delivery"`
}

// ToolsConfig holds binary paths for the external conversion tools.
// Empty values mean "resolve the default name from PATH".
type ToolsConfig struct {
	FFmpegPath       string `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath      string `yaml:"ffprobe_path" json:"ffprobe_path"`
	MagickPath       string `yaml:"magick_path" json:"magick_path"`
	PandocPath       string `yaml:"pandoc_path" json:"pandoc_path"`
	SofficePath      string `yaml:"soffice_path" json:"soffice_path"`
	EbookConvertPath string `yaml:"ebook_convert_path" json:"ebook_convert_path"`
}

type ConversionConfig struct {
	// TimeoutSeconds is the wall clock budget per job, not per batch.
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	OutputDir      string `yaml:"output_dir" json:"output_dir"`
}

// Timeout returns the per-job timeout as a duration.
func (c ConversionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// Dir receives the append-only log files; empty disables file
	// logging.
	Dir string `yaml:"dir" json:"dir"`
}

// DeliveryConfig selects the optional post-batch output publication
// backend.
type DeliveryConfig struct {
	Type      string            `yaml:"type" json:"type"`
	Local     LocalDelivery     `yaml:"local" json:"local"`
	AzureBlob AzureBlobDelivery `yaml:"azure_blob" json:"azure_blob"`
}

type LocalDelivery struct {
	Path string `yaml:"path" json:"path"`
}

type AzureBlobDelivery struct {
	Account        string `yaml:"account" json:"account"`
	Container      string `yaml:"container" json:"container"`
	AccountKey     string `yaml:"account_key" json:"account_key"`
	EndpointSuffix string `yaml:"endpoint_suffix" json:"endpoint_suffix"`
}

// Load loads configuration from config.yaml and environment variables
func Load() (*Config, error) {
	// Default configuration
	cfg := &Config{
		Tools: ToolsConfig{
			FFmpegPath:       "ffmpeg",
			FFprobePath:      "ffprobe",
			MagickPath:       "convert",
			PandocPath:       "pandoc",
			SofficePath:      "soffice",
			EbookConvertPath: "ebook-convert",
		},
		Conversion: ConversionConfig{
			TimeoutSeconds: 600,
			OutputDir:      "output",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
		Delivery: DeliveryConfig{
			Type: "none",
		},
	}

	// Load from config.yaml if present
	if _, err := os.Stat("config.yaml"); err == nil {
		yamlFile, err := os.ReadFile("config.yaml")
		if err != nil {
			return nil, fmt.Errorf("error reading config.yaml: %w", err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config.yaml: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnv(cfg)

	// Validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) {
	// Tool paths
	if val := os.Getenv("FILEFORGE_FFMPEG_PATH"); val != "" {
		cfg.Tools.FFmpegPath = val
	}
	if val := os.Getenv("FILEFORGE_FFPROBE_PATH"); val != "" {
		cfg.Tools.FFprobePath = val
	}
	if val := os.Getenv("FILEFORGE_MAGICK_PATH"); val != "" {
		cfg.Tools.MagickPath = val
	}
	if val := os.Getenv("FILEFORGE_PANDOC_PATH"); val != "" {
		cfg.Tools.PandocPath = val
	}
	if val := os.Getenv("FILEFORGE_SOFFICE_PATH"); val != "" {
		cfg.Tools.SofficePath = val
	}
	if val := os.Getenv("FILEFORGE_EBOOK_CONVERT_PATH"); val != "" {
		cfg.Tools.EbookConvertPath = val
	}

	// Conversion config
	if val := os.Getenv("FILEFORGE_TIMEOUT_SECONDS"); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil {
			cfg.Conversion.TimeoutSeconds = timeout
		}
	}
	if val := os.Getenv("FILEFORGE_OUTPUT_DIR"); val != "" {
		cfg.Conversion.OutputDir = val
	}

	// Logging config
	if val := os.Getenv("FILEFORGE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("FILEFORGE_LOG_DIR"); val != "" {
		cfg.Logging.Dir = val
	}

	// Delivery config
	if val := os.Getenv("FILEFORGE_DELIVERY_TYPE"); val != "" {
		cfg.Delivery.Type = val
	}
	if val := os.Getenv("FILEFORGE_DELIVERY_LOCAL_PATH"); val != "" {
		cfg.Delivery.Local.Path = val
	}
	if val := os.Getenv("FILEFORGE_DELIVERY_AZURE_ACCOUNT"); val != "" {
		cfg.Delivery.AzureBlob.Account = val
	}
	if val := os.Getenv("FILEFORGE_DELIVERY_AZURE_CONTAINER"); val != "" {
		cfg.Delivery.AzureBlob.Container = val
	}
	if val := os.Getenv("FILEFORGE_DELIVERY_AZURE_ACCOUNT_KEY"); val != "" {
		cfg.Delivery.AzureBlob.AccountKey = val
	}
	if val := os.Getenv("FILEFORGE_DELIVERY_AZURE_ENDPOINT_SUFFIX"); val != "" {
		cfg.Delivery.AzureBlob.EndpointSuffix = val
	}
}

// validate performs basic configuration validation
func validate(cfg *Config) error {
	if cfg.Conversion.TimeoutSeconds <= 0 {
		return fmt.Errorf("conversion timeout must be positive: %d", cfg.Conversion.TimeoutSeconds)
	}

	if cfg.Conversion.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	valid := false
	for _, l := range validLogLevels {
		if cfg.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	validDeliveryTypes := []string{"", "none", "local", "azure-blob"}
	valid = false
	for _, t := range validDeliveryTypes {
		if cfg.Delivery.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid delivery type: %s", cfg.Delivery.Type)
	}

	if cfg.Delivery.Type == "azure-blob" {
		if cfg.Delivery.AzureBlob.Account == "" || cfg.Delivery.AzureBlob.Container == "" {
			return fmt.Errorf("azure-blob delivery requires account and container")
		}
	}

	return nil
}
