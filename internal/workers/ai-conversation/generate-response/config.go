package generateresponse

import (
	"time"

	"lead-automation/internal/common/completion"
	"lead-automation/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
	Options completion.Options
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Timeout: 30 * time.Second,
		Options: completion.Options{MaxTokens: 150, Temperature: 0.7},
	}
}

func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = wcfg.Enabled
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}

	if c := appConfig.Completion.Conversation; c.MaxTokens > 0 {
		cfg.Options = completion.Options{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
	}
	return cfg
}
