// Package crypto signs and verifies token claim sets and sources the key
// material they are signed with.
package crypto

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/pkg/logger"
)

// KeySource provides the HMAC signing key. Implementations must be safe for
// concurrent use.
type KeySource interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

// StaticKeySource serves a key loaded from configuration.
type StaticKeySource struct {
	key []byte
}

// NewStaticKeySource wraps a configured key.
func NewStaticKeySource(key string) (*StaticKeySource, error) {
	if key == "" {
		return nil, fmt.Errorf("signing key is empty")
	}
	return &StaticKeySource{key: []byte(key)}, nil
}

func (s *StaticKeySource) SigningKey(ctx context.Context) ([]byte, error) {
	return s.key, nil
}

// VaultKeySource reads the signing key from a Vault KV secret. The key is
// fetched once at startup; rotation requires a restart.
type VaultKeySource struct {
	key []byte
}

// NewVaultKeySource connects to Vault and reads the key field from the
// configured mount path.
func NewVaultKeySource(cfg config.VaultConfig, log logger.Logger) (*VaultKeySource, error) {
	vc := vault.DefaultConfig()
	vc.Address = cfg.Address

	client, err := vault.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	secret, err := client.Logical().Read(cfg.MountPath)
	if err != nil {
		return nil, fmt.Errorf("read vault secret %s: %w", cfg.MountPath, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("vault secret %s not found", cfg.MountPath)
	}

	// KV v2 nests the payload under "data".
	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}
	raw, ok := data[cfg.KeyField].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("vault secret %s missing field %q", cfg.MountPath, cfg.KeyField)
	}

	log.Info(context.Background(), "signing key loaded from vault",
		logger.String("mount_path", cfg.MountPath),
	)
	return &VaultKeySource{key: []byte(raw)}, nil
}

func (s *VaultKeySource) SigningKey(ctx context.Context) ([]byte, error) {
	return s.key, nil
}

// NewKeySource picks the source the configuration asks for.
func NewKeySource(cfg *config.Config, log logger.Logger) (KeySource, error) {
	if cfg.Vault.Enabled {
		return NewVaultKeySource(cfg.Vault, log)
	}
	return NewStaticKeySource(cfg.Token.SigningKey)
}
