package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Provider  ProviderConfig  `mapstructure:"provider" validate:"required"`
	Webhook   WebhookConfig   `mapstructure:"webhook" validate:"required"`
	Blob      BlobConfig      `mapstructure:"blob" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// ProviderConfig contains settings for the upstream generation providers.
type ProviderConfig struct {
	// VideoEndpoint is the base URL of the asynchronous image-to-video provider.
	VideoEndpoint string `mapstructure:"video_endpoint" validate:"required,url"`

	// VideoAPIKey authenticates submissions to the video provider.
	VideoAPIKey string `mapstructure:"video_api_key" validate:"required"`

	// GeminiAPIKey authenticates the synchronous face-merge provider.
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// GeminiModel names the image model used for face merges.
	GeminiModel string `mapstructure:"gemini_model" validate:"required"`

	// SubmitTimeout bounds a single provider call. Media generation is
	// slow, so this is on the order of minutes; exceeding it is treated
	// as a provider failure, not a hang.
	SubmitTimeout time.Duration `mapstructure:"submit_timeout" validate:"required"`

	// MaxPromptRunes bounds prompt length before submission. Oversized
	// prompts are truncated, never rejected.
	MaxPromptRunes int `mapstructure:"max_prompt_runes" validate:"required,gt=0"`

	// DefaultVideoPrompt substitutes an empty or all-whitespace video prompt.
	DefaultVideoPrompt string `mapstructure:"default_video_prompt" validate:"required"`

	// DefaultMergePrompt substitutes an empty or all-whitespace merge prompt.
	DefaultMergePrompt string `mapstructure:"default_merge_prompt" validate:"required"`
}

// WebhookConfig contains settings for the inbound completion webhook.
type WebhookConfig struct {
	// CallbackBaseURL is the externally reachable base URL async providers
	// call back to; the signed token path segment is appended to it.
	CallbackBaseURL string `mapstructure:"callback_base_url" validate:"required,url"`

	// TokenSecret signs callback tokens embedded in webhook URLs.
	TokenSecret string `mapstructure:"token_secret" validate:"required,min=32"`

	// TokenTTL bounds how long a callback token stays valid.
	TokenTTL time.Duration `mapstructure:"token_ttl" validate:"required"`
}

// BlobConfig contains settings for the object store holding generated media.
type BlobConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// SchedulerConfig contains settings for the periodic background jobs.
type SchedulerConfig struct {
	// ReconcileInterval is how often the reconciliation job polls the
	// provider for tasks stuck in background status.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval" validate:"required"`
}
