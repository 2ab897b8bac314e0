// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Server       ServerConfig            `mapstructure:"server"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	DataStore    DataStoreConfig         `mapstructure:"data_store"`
	Completion   CompletionConfig        `mapstructure:"completion"`
	Email        EmailConfig             `mapstructure:"email"`
	SMS          SMSConfig               `mapstructure:"sms"`
	AWS          AWSConfig               `mapstructure:"aws"`
	Webhooks     WebhooksConfig          `mapstructure:"webhooks"`
	Scheduler    SchedulerConfig         `mapstructure:"scheduler"`
	Refresh      RefreshConfig           `mapstructure:"refresh"`
	ClientConfig ClientConfigStore       `mapstructure:"client_config"`
	API          APIConfig               `mapstructure:"api"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every Zeebe worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Remote services ---

// DataStoreConfig selects the lead record store.
type DataStoreConfig struct {
	Provider string         `mapstructure:"provider"` // airtable | postgres
	Airtable AirtableConfig `mapstructure:"airtable"`
}

type AirtableConfig struct {
	BaseURL string `mapstructure:"base_url"`
	BaseID  string `mapstructure:"base_id"`
	Token   string `mapstructure:"token"`
	Table   string `mapstructure:"table"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// CompletionConfig configures the chat-completion endpoint.
type CompletionConfig struct {
	BaseURL       string            `mapstructure:"base_url"`
	APIKey        string            `mapstructure:"api_key"`
	Model         string            `mapstructure:"model"`
	Timeout       int               `mapstructure:"timeout"` // milliseconds
	Qualification CompletionOptions `mapstructure:"qualification"`
	Conversation  CompletionOptions `mapstructure:"conversation"`
}

type CompletionOptions struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// EmailConfig selects and configures the transactional email provider.
type EmailConfig struct {
	Provider    string      `mapstructure:"provider"` // brevo | ses | smtp
	SenderName  string      `mapstructure:"sender_name"`
	SenderEmail string      `mapstructure:"sender_email"`
	Timeout     int         `mapstructure:"timeout"` // milliseconds
	Brevo       BrevoConfig `mapstructure:"brevo"`
	SMTP        SMTPConfig  `mapstructure:"smtp"`
}

type BrevoConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SMSConfig selects and configures the SMS provider.
type SMSConfig struct {
	Provider      string         `mapstructure:"provider"` // textbelt | sns
	DefaultRegion string         `mapstructure:"default_region"`
	Timeout       int            `mapstructure:"timeout"` // milliseconds
	Textbelt      TextbeltConfig `mapstructure:"textbelt"`
}

type TextbeltConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// WebhooksConfig holds per-event receiver URLs.
type WebhooksConfig struct {
	Source  string            `mapstructure:"source"`
	Timeout int               `mapstructure:"timeout"` // milliseconds
	URLs    map[string]string `mapstructure:"urls"`
}

// SchedulerConfig configures the asynq follow-up queue.
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Queue       string `mapstructure:"queue"`
	Concurrency int    `mapstructure:"concurrency"`
}

type RefreshConfig struct {
	Interval int `mapstructure:"interval"` // milliseconds
}

// ClientConfigStore selects where client configuration is persisted.
type ClientConfigStore struct {
	Store string `mapstructure:"store"` // redis | memory
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	RateLimit   float64 `mapstructure:"rate_limit"` // submissions per second per client IP
	Burst       int     `mapstructure:"burst"`
	LimiterIdle int     `mapstructure:"limiter_idle"` // milliseconds
	TrustProxy  bool    `mapstructure:"trust_proxy"`
}
