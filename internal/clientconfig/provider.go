package clientconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lead-automation/internal/common/logger"
)

// Storage keys.
const (
	KeyCurrentConfig    = "currentConfig"
	KeySelectedIndustry = "selectedIndustry"
	clientKeyPrefix     = "config_"
)

func clientKey(clientID string) string {
	return clientKeyPrefix + clientID
}

// Provider owns the process-wide current configuration.
// It starts Unloaded; Current returns the defaults until a load succeeds or fails.
type Provider struct {
	store  Store
	logger logger.Logger

	mu      sync.RWMutex
	current *ClientConfig
	loaded  bool
}

func NewProvider(store Store, log logger.Logger) *Provider {
	return &Provider{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "clientconfig"}),
	}
}

// Initialize loads the persisted current configuration.
func (p *Provider) Initialize(ctx context.Context) (ClientConfig, error) {
	cfg, err := p.LoadConfig(ctx, "")
	if err != nil {
		p.logger.Warn("configuration initialization fell back to defaults", map[string]interface{}{"error": err.Error()})
		return cfg, err
	}
	p.logger.Info("configuration initialized", map[string]interface{}{
		"companyName": cfg.CompanyName,
		"industry":    cfg.Industry,
	})
	return cfg, nil
}

// LoadConfig resolves and installs the current configuration.
// With a clientID it reads config_<clientID>, falling back to the selected
// industry's built-in config. Without one it reads currentConfig, falling back
// to the defaults. On any store or decode failure the defaults are installed
// and the error is returned alongside them.
func (p *Provider) LoadConfig(ctx context.Context, clientID string) (ClientConfig, error) {
	cfg, err := p.resolve(ctx, clientID)
	if err != nil {
		cfg = DefaultConfig()
	}
	p.setCurrent(cfg)
	return cfg, err
}

func (p *Provider) resolve(ctx context.Context, clientID string) (ClientConfig, error) {
	if clientID == "" {
		cfg, found, err := p.read(ctx, KeyCurrentConfig)
		if err != nil || !found {
			return DefaultConfig(), err
		}
		return cfg, nil
	}

	cfg, found, err := p.read(ctx, clientKey(clientID))
	if err != nil {
		return ClientConfig{}, err
	}
	if found {
		return cfg, nil
	}

	industry, ok, err := p.store.Get(ctx, KeySelectedIndustry)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("read %s: %w", KeySelectedIndustry, err)
	}
	if !ok || industry == "" {
		industry = DefaultIndustry
	}
	return IndustryConfig(industry), nil
}

func (p *Provider) read(ctx context.Context, key string) (ClientConfig, bool, error) {
	raw, found, err := p.store.Get(ctx, key)
	if err != nil {
		return ClientConfig{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return ClientConfig{}, false, nil
	}
	var cfg ClientConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return ClientConfig{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return cfg, true, nil
}

// SaveConfig persists cfg under config_<clientID>, or as the current
// configuration when clientID is empty. Only the latter changes Current.
func (p *Provider) SaveConfig(ctx context.Context, cfg ClientConfig, clientID string) error {
	key := KeyCurrentConfig
	if clientID != "" {
		key = clientKey(clientID)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := p.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	if clientID == "" {
		p.setCurrent(cfg)
	}
	return nil
}

// SwitchClient installs the industry's built-in configuration as current and
// remembers the industry selection. It returns the new configuration and a
// human-readable confirmation.
func (p *Provider) SwitchClient(ctx context.Context, industry, clientID string) (ClientConfig, string, error) {
	cfg := IndustryConfig(industry)
	if clientID != "" {
		cfg.ClientID = clientID
	}

	if err := p.SaveConfig(ctx, cfg, ""); err != nil {
		return ClientConfig{}, "", err
	}
	if err := p.store.Set(ctx, KeySelectedIndustry, industry); err != nil {
		return ClientConfig{}, "", fmt.Errorf("write %s: %w", KeySelectedIndustry, err)
	}

	p.logger.Info("client switched", map[string]interface{}{
		"industry": cfg.Industry,
		"clientId": cfg.ClientID,
	})
	return cfg, fmt.Sprintf("Switched to %s", cfg.CompanyName), nil
}

// Current returns the installed configuration, or the defaults while Unloaded.
func (p *Provider) Current() ClientConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return DefaultConfig()
	}
	return *p.current
}

// Loaded reports whether a load or switch has completed.
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

func (p *Provider) setCurrent(cfg ClientConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &cfg
	p.loaded = true
}
