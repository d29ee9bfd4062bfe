package gateway

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txn2/mcp-agent-gate/pkg/approval"
	"github.com/txn2/mcp-agent-gate/pkg/session"
)

const (
	// DefaultTokenBudget bounds the estimated serialized size of the tool
	// definitions exposed to the agent in one turn.
	DefaultTokenBudget = 8000

	// DefaultCleanupInterval is the cadence of the approval-gate cleanup.
	DefaultCleanupInterval = time.Minute
)

// Config holds the complete gateway configuration.
type Config struct {
	Sessions  session.Config  `yaml:"sessions"`
	Approvals approval.Config `yaml:"approvals"`
	Auth      AuthConfig      `yaml:"auth"`

	// TokenBudget caps the token estimate of the budgeted tool list.
	TokenBudget int `yaml:"token_budget"`

	// CleanupInterval is how often expired confirmations are swept.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// AuthConfig configures bearer-token resolution.
type AuthConfig struct {
	// SigningKey is the HMAC key for verifying bearer tokens.
	SigningKey string `yaml:"signing_key"`

	// RoleClaimPath is the dot-separated path to roles in token claims.
	RoleClaimPath string `yaml:"role_claim_path"`

	// PermissionClaimPath is the dot-separated path to direct permission
	// claims.
	PermissionClaimPath string `yaml:"permission_claim_path"`

	// PermissionPrefix filters direct permission claims by prefix.
	PermissionPrefix string `yaml:"permission_prefix"`

	// RoleGrants expands role names into permission strings.
	RoleGrants map[string][]string `yaml:"role_grants"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.TokenBudget < 0 {
		return fmt.Errorf("token_budget must not be negative")
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cleanup_interval must not be negative")
	}
	return nil
}

// withDefaults fills zero fields with package defaults. Component configs
// carry their own defaults.
func (c Config) withDefaults() Config {
	if c.TokenBudget == 0 {
		c.TokenBudget = DefaultTokenBudget
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	return c
}
