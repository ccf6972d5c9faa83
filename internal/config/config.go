package config

import (
	"fmt"
	"time"

	"github.com/turtacn/authcore/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Token     TokenConfig     `mapstructure:"token"`
	Session   SessionConfig   `mapstructure:"session"`
	Device    DeviceConfig    `mapstructure:"device"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`

	// Live exposes the hot-reloadable settings. LoadConfig seeds it and the
	// file watcher replaces its contents; structural settings still require
	// a restart.
	Live *LiveSettings `mapstructure:"-"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PprofEnabled bool          `mapstructure:"pprof_enabled"`
}

type RedisConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`

	// StoreTimeout bounds every round-trip to the shared store. Expiry of
	// this timeout is treated as store unavailability.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

type TokenConfig struct {
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	SigningKey      string        `mapstructure:"signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`

	// FailOpen controls Verify behavior when the revocation set is
	// unreachable: false (default) rejects the request, true treats the
	// token as valid. Signature and expiry checks are never skipped.
	FailOpen bool `mapstructure:"fail_open"`
}

type SessionConfig struct {
	IdleTimeout     time.Duration            `mapstructure:"idle_timeout"`
	AbsoluteTimeout time.Duration            `mapstructure:"absolute_timeout"`
	AuditRetention  time.Duration            `mapstructure:"audit_retention"`
	MaxPerUser      int                      `mapstructure:"max_per_user"`
	EvictionPolicy  constants.EvictionPolicy `mapstructure:"eviction_policy"`
}

type DeviceConfig struct {
	TrustPeriod time.Duration `mapstructure:"trust_period"`
}

// RateLimitRule bounds one named operation.
type RateLimitRule struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

type RateLimitConfig struct {
	Enabled bool                     `mapstructure:"enabled"`
	Rules   map[string]RateLimitRule `mapstructure:"rules"`

	// FailOpen controls behavior when the shared store is unreachable.
	// Rate limiting is defense in depth, so the default is true.
	FailOpen bool `mapstructure:"fail_open"`
}

// RuleFor returns the rule for an operation, falling back to "default".
func (c RateLimitConfig) RuleFor(operation string) RateLimitRule {
	if rule, ok := c.Rules[operation]; ok {
		return rule
	}
	if rule, ok := c.Rules[constants.RateLimitOpDefault]; ok {
		return rule
	}
	return RateLimitRule{Max: 100, Window: time.Minute}
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type AuditConfig struct {
	// QueueSize bounds the dispatch queue; non-critical events are shed
	// when it fills.
	QueueSize int           `mapstructure:"queue_size"`
	Kafka     KafkaConfig   `mapstructure:"kafka"`
	Archive   ArchiveConfig `mapstructure:"archive"`
}

type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
	KeyField  string `mapstructure:"key_field"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if len(c.Redis.Addresses) == 0 {
		return fmt.Errorf("redis.addresses must not be empty")
	}
	if !c.Vault.Enabled && c.Token.SigningKey == "" {
		return fmt.Errorf("token.signing_key is required when vault is disabled")
	}
	if c.Session.IdleTimeout <= 0 || c.Session.AbsoluteTimeout <= 0 {
		return fmt.Errorf("session timeouts must be positive")
	}
	if c.Session.IdleTimeout > c.Session.AbsoluteTimeout {
		return fmt.Errorf("session.idle_timeout must not exceed session.absolute_timeout")
	}
	switch c.Session.EvictionPolicy {
	case constants.EvictLeastRecentlyCreated, constants.EvictLeastRecentlyUsed:
	default:
		return fmt.Errorf("session.eviction_policy must be %q or %q",
			constants.EvictLeastRecentlyCreated, constants.EvictLeastRecentlyUsed)
	}
	for name, rule := range c.RateLimit.Rules {
		if rule.Max <= 0 || rule.Window <= 0 {
			return fmt.Errorf("rate_limit.rules.%s: max and window must be positive", name)
		}
	}
	return nil
}
