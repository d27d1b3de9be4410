package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over values from config files and use the CHATLAMIX_ prefix
// with underscores for nesting (e.g. CHATLAMIX_DATABASE_URL).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHATLAMIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars alone may be complete.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Required settings without a usable default are still registered so
	// AutomaticEnv can populate them through Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("provider.video_endpoint", "")
	v.SetDefault("provider.video_api_key", "")
	v.SetDefault("provider.gemini_api_key", "")
	v.SetDefault("webhook.callback_base_url", "")
	v.SetDefault("webhook.token_secret", "")
	v.SetDefault("blob.base_url", "")

	v.SetDefault("provider.gemini_model", "gemini-2.0-flash-exp-image-generation")
	v.SetDefault("provider.submit_timeout", 5*time.Minute)
	v.SetDefault("provider.max_prompt_runes", 800)
	v.SetDefault("provider.default_video_prompt", "animate this image with natural motion")
	v.SetDefault("provider.default_merge_prompt", "blend the second face onto the first image")

	v.SetDefault("webhook.token_ttl", 24*time.Hour)

	v.SetDefault("scheduler.reconcile_interval", 2*time.Minute)
}
