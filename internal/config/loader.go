package config

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

// LoadConfig loads the configuration from file, environment variables, and defaults.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/authcore/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("AUTHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Live = NewLiveSettings(cfg.RateLimit, cfg.Log.Level)

	// Reload limit rules and log level on config file changes. Structural
	// settings (addresses, ports) require a restart.
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info(context.Background(), "config file changed, reloading rate limit rules",
			logger.String("file", e.Name))
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Warn(context.Background(), "config reload failed", logger.Err(err))
			return
		}
		if err := next.Validate(); err != nil {
			log.Warn(context.Background(), "config reload rejected", logger.Err(err))
			return
		}
		cfg.Live.Apply(next.RateLimit, next.Log.Level)
	})
	v.WatchConfig()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.pprof_enabled", false)

	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.store_timeout", constants.StoreTimeoutDefault)

	v.SetDefault("token.issuer", "authcore")
	v.SetDefault("token.signing_key", "")
	v.SetDefault("token.audience", "authcore-api")
	v.SetDefault("token.access_token_ttl", constants.AccessTokenDefaultTTL)
	v.SetDefault("token.refresh_token_ttl", constants.RefreshTokenDefaultTTL)
	v.SetDefault("token.fail_open", false)

	v.SetDefault("session.idle_timeout", constants.SessionIdleTimeoutDefault)
	v.SetDefault("session.absolute_timeout", constants.SessionAbsoluteTimeoutDefault)
	v.SetDefault("session.audit_retention", constants.SessionAuditRetentionDefault)
	v.SetDefault("session.max_per_user", constants.MaxSessionsPerUserDefault)
	v.SetDefault("session.eviction_policy", string(constants.EvictLeastRecentlyCreated))

	v.SetDefault("device.trust_period", constants.DeviceTrustPeriodDefault)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.fail_open", true)
	v.SetDefault("rate_limit.rules", map[string]interface{}{
		constants.RateLimitOpLogin:    map[string]interface{}{"max": 5, "window": "60s"},
		constants.RateLimitOpRegister: map[string]interface{}{"max": 3, "window": "60s"},
		constants.RateLimitOpRefresh:  map[string]interface{}{"max": 30, "window": "60s"},
		constants.RateLimitOpDefault:  map[string]interface{}{"max": 100, "window": "60s"},
	})

	v.SetDefault("audit.queue_size", 1024)
	v.SetDefault("audit.kafka.enabled", false)
	v.SetDefault("audit.kafka.topic", "authcore-audit")
	v.SetDefault("audit.kafka.batch_size", 100)
	v.SetDefault("audit.kafka.batch_timeout", time.Second)
	v.SetDefault("audit.kafka.write_timeout", 10*time.Second)
	v.SetDefault("audit.kafka.required_acks", -1)
	v.SetDefault("audit.archive.enabled", false)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.mount_path", "secret/data/authcore/signing")
	v.SetDefault("vault.key_field", "signing_key")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "authcore")
}
