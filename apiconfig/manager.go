package apiconfig

import (
	"os"
	"strings"
	"sync"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "COORDINATION_"

// ConfigManager loads the layered configuration (defaults, then the yaml
// file, then environment overrides) and hands out snapshots.
type ConfigManager struct {
	mu     sync.RWMutex
	config Config
}

// LoadConfig reads the configuration from path. A missing file is not an
// error: defaults plus environment variables then apply. Environment keys use
// double underscores as section separators, e.g. COORDINATION_API__ADMIN_SERVER_PORT.
func LoadConfig(path string) (*ConfigManager, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config file %s", path)
			}
			logging.Info("config file loaded", types.Config, "path", path)
		} else {
			logging.Warn("config file not found, using defaults", types.Config, "path", path)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, errors.Wrap(err, "load config env")
	}

	return newManager(k)
}

// LoadConfigBytes parses an in-memory yaml document over the defaults.
// Intended for tests.
func LoadConfigBytes(data []byte) (*ConfigManager, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "parse config bytes")
	}
	return newManager(k)
}

func newManager(k *koanf.Koanf) (*ConfigManager, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &ConfigManager{config: cfg}, nil
}

func envKeyToPath(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// GetConfig returns a snapshot of the current configuration.
func (m *ConfigManager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}
