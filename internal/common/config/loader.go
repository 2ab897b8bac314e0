// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Webhook event keys recognised under webhooks.urls.
var webhookEnvKeys = map[string]string{
	"lead_capture":       "WEBHOOK_LEAD_CAPTURE_URL",
	"email_sequence":     "WEBHOOK_EMAIL_SEQUENCE_URL",
	"sms_notification":   "WEBHOOK_SMS_NOTIFICATION_URL",
	"lead_qualification": "WEBHOOK_LEAD_QUALIFICATION_URL",
}

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills credentials that are still empty from well-known env vars.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.DataStore.Airtable.Token, "AIRTABLE_TOKEN")
	setIfEmpty(&cfg.DataStore.Airtable.BaseID, "AIRTABLE_BASE_ID")
	setIfEmpty(&cfg.Completion.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.Email.Brevo.APIKey, "BREVO_API_KEY")
	setIfEmpty(&cfg.Email.SMTP.Password, "SMTP_PASSWORD")
	setIfEmpty(&cfg.SMS.Textbelt.APIKey, "TEXTBELT_API_KEY")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")

	if cfg.Webhooks.URLs == nil {
		cfg.Webhooks.URLs = make(map[string]string)
	}
	for event, envKey := range webhookEnvKeys {
		if cfg.Webhooks.URLs[event] != "" {
			continue
		}
		if val := os.Getenv(envKey); val != "" {
			cfg.Webhooks.URLs[event] = val
		}
	}
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lead-automation"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}

	if cfg.DataStore.Provider == "" {
		cfg.DataStore.Provider = "airtable"
	}
	if cfg.DataStore.Airtable.BaseURL == "" {
		cfg.DataStore.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.DataStore.Airtable.Table == "" {
		cfg.DataStore.Airtable.Table = "Leads"
	}
	if cfg.DataStore.Airtable.Timeout == 0 {
		cfg.DataStore.Airtable.Timeout = 10000
	}

	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-3.5-turbo"
	}
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 30000
	}
	if cfg.Completion.Qualification.MaxTokens == 0 {
		cfg.Completion.Qualification.MaxTokens = 200
	}
	if cfg.Completion.Qualification.Temperature == 0 {
		cfg.Completion.Qualification.Temperature = 0.3
	}
	if cfg.Completion.Conversation.MaxTokens == 0 {
		cfg.Completion.Conversation.MaxTokens = 150
	}
	if cfg.Completion.Conversation.Temperature == 0 {
		cfg.Completion.Conversation.Temperature = 0.7
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "brevo"
	}
	if cfg.Email.SenderName == "" {
		cfg.Email.SenderName = "LeadGenius Pro"
	}
	if cfg.Email.SenderEmail == "" {
		cfg.Email.SenderEmail = "noreply@leadgeniuspro.com"
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = 10000
	}
	if cfg.Email.Brevo.BaseURL == "" {
		cfg.Email.Brevo.BaseURL = "https://api.brevo.com/v3"
	}
	if cfg.Email.SMTP.Port == 0 {
		cfg.Email.SMTP.Port = 587
	}

	if cfg.SMS.Provider == "" {
		cfg.SMS.Provider = "textbelt"
	}
	if cfg.SMS.DefaultRegion == "" {
		cfg.SMS.DefaultRegion = "US"
	}
	if cfg.SMS.Timeout == 0 {
		cfg.SMS.Timeout = 10000
	}
	if cfg.SMS.Textbelt.BaseURL == "" {
		cfg.SMS.Textbelt.BaseURL = "https://textbelt.com"
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}

	if cfg.Webhooks.Source == "" {
		cfg.Webhooks.Source = "mobile_app"
	}
	if cfg.Webhooks.Timeout == 0 {
		cfg.Webhooks.Timeout = 10000
	}

	if cfg.Scheduler.Queue == "" {
		cfg.Scheduler.Queue = "followups"
	}
	if cfg.Scheduler.Concurrency == 0 {
		cfg.Scheduler.Concurrency = 5
	}

	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = 30000
	}

	if cfg.ClientConfig.Store == "" {
		cfg.ClientConfig.Store = "redis"
	}

	if cfg.API.RateLimit == 0 {
		cfg.API.RateLimit = 1
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = 5
	}
	if cfg.API.LimiterIdle == 0 {
		cfg.API.LimiterIdle = 600000
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	switch cfg.DataStore.Provider {
	case "airtable":
		if cfg.DataStore.Airtable.BaseID == "" {
			return fmt.Errorf("data_store.airtable.base_id is required")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres data store")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for the postgres data store")
		}
	default:
		return fmt.Errorf("data_store.provider %q is not supported", cfg.DataStore.Provider)
	}

	switch cfg.Email.Provider {
	case "brevo", "ses":
	case "smtp":
		if cfg.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required for the smtp provider")
		}
	default:
		return fmt.Errorf("email.provider %q is not supported", cfg.Email.Provider)
	}

	switch cfg.SMS.Provider {
	case "textbelt", "sns":
	default:
		return fmt.Errorf("sms.provider %q is not supported", cfg.SMS.Provider)
	}

	switch cfg.ClientConfig.Store {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis client config store")
		}
	default:
		return fmt.Errorf("client_config.store %q is not supported", cfg.ClientConfig.Store)
	}

	if cfg.Scheduler.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when the scheduler is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
