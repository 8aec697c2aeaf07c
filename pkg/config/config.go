package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Validation    ValidationConfig    `mapstructure:"validation"`
	Redaction     RedactionConfig     `mapstructure:"redaction"`
	Hallucination HallucinationConfig `mapstructure:"hallucination"`
	Audit         AuditConfig         `mapstructure:"audit"`
}

type ValidationConfig struct {
	MaxTextLength int     `mapstructure:"max_text_length"`
	MinTextLength int     `mapstructure:"min_text_length"`
	MaxFileSizeMB int64   `mapstructure:"max_file_size_mb"`
	RiskThreshold float64 `mapstructure:"risk_threshold"`
}

type RedactionConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

type HallucinationConfig struct {
	OverlapThreshold float64       `mapstructure:"overlap_threshold"`
	SearchK          int           `mapstructure:"search_k"`
	IndexTimeout     time.Duration `mapstructure:"index_timeout"`
	MaxFailures      uint32        `mapstructure:"max_failures"`
	BreakerReset     time.Duration `mapstructure:"breaker_reset"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	Concurrency      int           `mapstructure:"concurrency"`
}

type AuditConfig struct {
	LogFile              string `mapstructure:"log_file"`
	HallucinationLogFile string `mapstructure:"hallucination_log_file"`
}

var globalConfig Config

func Load(configPath string) error {
	setDefaultValues()

	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No file is fine; defaults and environment variables apply.
			return viper.Unmarshal(out)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	viper.SetDefault("validation.max_text_length", 50000)
	viper.SetDefault("validation.min_text_length", 10)
	viper.SetDefault("validation.max_file_size_mb", 10)
	viper.SetDefault("validation.risk_threshold", 0.5)
	viper.SetDefault("redaction.min_confidence", 0.7)
	viper.SetDefault("hallucination.overlap_threshold", 0.7)
	viper.SetDefault("hallucination.search_k", 3)
	viper.SetDefault("hallucination.index_timeout", 5*time.Second)
	viper.SetDefault("hallucination.max_failures", 5)
	viper.SetDefault("hallucination.breaker_reset", 30*time.Second)
	viper.SetDefault("hallucination.cache_ttl", 10*time.Minute)
	viper.SetDefault("hallucination.concurrency", 4)
	viper.SetDefault("audit.log_file", "logs/security_audit.log")
	viper.SetDefault("audit.hallucination_log_file", "logs/hallucination_audit.log")
}

func GetConfig() *Config {
	return &globalConfig
}

// FromMap decodes an untyped settings map, as received from a host
// application's component configuration, into a Config. String durations
// like "5s" are accepted for the timeout fields.
func FromMap(settings map[string]interface{}) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("building settings decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return cfg, nil
}
