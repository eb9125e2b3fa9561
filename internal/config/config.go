package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viniciushammett/go-audit-trail/internal/rules"
)

type ServerCfg struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageCfg struct {
	DataDir string `yaml:"dataDir"` // raiz de todo estado persistido
}

type MonitorCfg struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"` // ex: 5m
}

type SlackCfg struct {
	Webhook string `yaml:"webhook"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	Server    ServerCfg    `yaml:"server"`
	AuthToken string       `yaml:"authToken"`
	Storage   StorageCfg   `yaml:"storage"`
	Monitor   MonitorCfg   `yaml:"monitor"`
	Rules     []rules.Rule `yaml:"rules"`
	Slack     SlackCfg     `yaml:"slack"`
}

// Load reads the YAML config. A missing file is fine: defaults apply.
func Load(path string) (*Config, error) {
	var c Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults mínimos
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = 5 * time.Minute
	}
	return &c, nil
}

// DataDir resolves the base directory for persisted state. The AUDIT_DATA_DIR
// override is consulted on every call, never cached, so changing it takes
// effect on the very next path computation.
func (c *Config) DataDir() string {
	if v := os.Getenv("AUDIT_DATA_DIR"); v != "" {
		return v
	}
	return c.Storage.DataDir
}
