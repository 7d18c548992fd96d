// Package config loads the freightline service configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/freightline-io/freightline/pkg/util"
)

// Defaults applied for unset fields.
const (
	DefaultRedisAddr = "localhost:6379"
	DefaultWorkers   = 4
	DefaultBatchMin  = 8
	DefaultTimeout   = 10 * time.Second
)

// Config is the service configuration (freightline.yaml).
type Config struct {
	// Data sources
	UTSFDir     string `yaml:"utsf_dir"`
	PincodeFile string `yaml:"pincode_file"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`

	// Operations trail for control-plane changes
	AuditLog        string `yaml:"audit_log"`
	AuditMaxSize    int64  `yaml:"audit_max_size"`
	AuditMaxBackups int    `yaml:"audit_max_backups"`

	// Quote engine tuning
	Workers  int           `yaml:"workers"`
	BatchMin int           `yaml:"batch_min"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Load reads and validates a config file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied and no data
// sources set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.RedisAddr == "" {
		c.RedisAddr = DefaultRedisAddr
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.BatchMin <= 0 {
		c.BatchMin = DefaultBatchMin
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) validate() error {
	v := &util.ValidationBuilder{}
	v.Add(c.UTSFDir != "", "utsf_dir is required")
	v.Add(c.PincodeFile != "", "pincode_file is required")
	v.Add(c.RedisDB >= 0, "redis_db must not be negative")
	return v.Build()
}
