package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	S3         S3Config
	VoiceAgent VoiceAgentConfig
	LLM        LLMConfig
	Messaging  MessagingConfig
	Scheduler  SchedulerConfig
	Mailbox    MailboxConfig
	Sentry     SentryConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret   string
	RefreshSecret  string
	AccessExpiry   time.Duration
	RefreshExpiry  time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// SentryConfig holds error-reporting configuration. A blank DSN disables reporting
// entirely, which is the default for local development.
type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
}

// S3Config holds S3 storage configuration
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// VoiceAgentConfig holds the outbound voice-call provider configuration.
type VoiceAgentConfig struct {
	BaseURL        string
	APIKey         string
	AgentID        string
	PhoneNumberID  string
	WebhookSecret  string
	BatchChunkSize int
	SendTimeout    time.Duration
	PollTimeout    time.Duration
}

// LLMConfig holds the evaluation/extraction model configuration.
type LLMConfig struct {
	APIKey       string
	ScoringModel string
	FastModel    string
	MaxTokens    int64
	Timeout      time.Duration
}

// MessagingConfig holds outbound channel configuration.
type MessagingConfig struct {
	ResendAPIKey          string
	EmailFromAddr         string
	WhatsAppBaseURL       string
	WhatsAppToken         string
	WhatsAppWebhookSecret string
	SendTimeout           time.Duration
	DownloadTimeout       time.Duration
}

// SchedulerConfig tunes the five periodic jobs.
type SchedulerConfig struct {
	Timezone                string
	StuckCallThreshold       time.Duration
	OrphanThreshold          time.Duration
	MisfireGraceTime         time.Duration
	MailboxPollEnabled       bool
	MailboxInboxLabel        string
	MailboxProcessedLabel    string
}

// MailboxConfig holds the Gmail API OAuth2 grant poll_cv_inbox authenticates with. The
// refresh token itself is acquired out-of-band (an operator-run console flow, never this
// service) and handed to the process as a secret; nothing here performs that handshake.
type MailboxConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "jobber"),
			Password:        getEnv("DB_PASSWORD", "jobber"),
			DBName:          getEnv("DB_NAME", "jobber"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:  getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:   getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry:  getEnvAsDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "eu-central"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		VoiceAgent: VoiceAgentConfig{
			BaseURL:        getEnv("VOICE_AGENT_BASE_URL", "https://api.elevenlabs.io"),
			APIKey:         getEnv("VOICE_AGENT_API_KEY", ""),
			AgentID:        getEnv("VOICE_AGENT_AGENT_ID", ""),
			PhoneNumberID:  getEnv("VOICE_AGENT_PHONE_NUMBER_ID", ""),
			WebhookSecret:  getEnv("VOICE_AGENT_WEBHOOK_SECRET", ""),
			BatchChunkSize: getEnvAsInt("VOICE_AGENT_BATCH_CHUNK_SIZE", 50),
			SendTimeout:    getEnvAsDuration("VOICE_AGENT_SEND_TIMEOUT", 20*time.Second),
			PollTimeout:    getEnvAsDuration("VOICE_AGENT_POLL_TIMEOUT", 20*time.Second),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("ANTHROPIC_API_KEY", ""),
			ScoringModel: getEnv("ANTHROPIC_SCORING_MODEL", "claude-sonnet-4-5"),
			FastModel:    getEnv("ANTHROPIC_FAST_MODEL", "claude-haiku-4-5"),
			MaxTokens:    int64(getEnvAsInt("ANTHROPIC_MAX_TOKENS", 1024)),
			Timeout:      getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
		},
		Messaging: MessagingConfig{
			ResendAPIKey:          getEnv("RESEND_API_KEY", ""),
			EmailFromAddr:         getEnv("MESSAGING_EMAIL_FROM", "recruiting@example.com"),
			WhatsAppBaseURL:       getEnv("WHATSAPP_BASE_URL", ""),
			WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
			WhatsAppWebhookSecret: getEnv("WHATSAPP_WEBHOOK_SECRET", ""),
			SendTimeout:           getEnvAsDuration("MESSAGING_SEND_TIMEOUT", 20*time.Second),
			DownloadTimeout:       getEnvAsDuration("MESSAGING_DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Scheduler: SchedulerConfig{
			Timezone:              getEnv("SCHEDULER_TIMEZONE", "UTC"),
			StuckCallThreshold:    getEnvAsDuration("SCHEDULER_STUCK_CALL_THRESHOLD", 15*time.Minute),
			OrphanThreshold:       getEnvAsDuration("SCHEDULER_ORPHAN_THRESHOLD", 60*time.Minute),
			MisfireGraceTime:      getEnvAsDuration("SCHEDULER_MISFIRE_GRACE", 30*time.Second),
			MailboxPollEnabled:    getEnvAsBool("SCHEDULER_MAILBOX_POLL_ENABLED", false),
			MailboxInboxLabel:     getEnv("SCHEDULER_MAILBOX_INBOX_LABEL", "INBOX"),
			MailboxProcessedLabel: getEnv("SCHEDULER_MAILBOX_PROCESSED_LABEL", "CV_PROCESSED"),
		},
		Mailbox: MailboxConfig{
			ClientID:     getEnv("GMAIL_CLIENT_ID", ""),
			ClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Environment:      getEnv("SENTRY_ENVIRONMENT", getEnv("SERVER_ENV", "development")),
			TracesSampleRate: getEnvAsFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
		},
	}

	// Validate required fields
	if cfg.JWT.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
