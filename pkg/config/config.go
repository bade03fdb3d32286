// Package config merges the server's three configuration sources: command
// line flags, a YAML file and FOLIODB_* environment variables. An explicit
// --config wins, then explicit flags, then the file, then env.
package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		StorePath string `yaml:"store_path"`
	} `yaml:"storage"`
	Auth struct {
		AdminEmail    string `yaml:"admin_email"`
		AdminPassword string `yaml:"admin_password"`
		RateLimit     struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"auth"`
	Backups struct {
		// Schedule is a cron expression; empty disables scheduled backups.
		Schedule string `yaml:"schedule"`
		Keep     int    `yaml:"keep"`
		// MaxSize accepts humanized values like "64MB"; empty means unbounded.
		MaxSize string `yaml:"max_size"`
	} `yaml:"backups"`
	Logging struct {
		Level string `yaml:"level"`
		Sink  string `yaml:"sink"`
	} `yaml:"logging"`
	Ingest struct {
		Address string `yaml:"address"`
	} `yaml:"ingest"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// BackupMaxBytes parses the humanized size cap; 0 means unbounded. A value
// that does not parse is treated as unbounded rather than fatal.
func (c *Config) BackupMaxBytes() int64 {
	if c.Backups.MaxSize == "" {
		return 0
	}
	n, err := humanize.ParseBytes(c.Backups.MaxSize)
	if err != nil {
		return 0
	}
	return int64(n)
}

// LoadDotenv reads a .env file into the process environment when present.
// Absence is not an error.
func LoadDotenv() {
	_ = godotenv.Load()
}

// Load parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and FOLIODB_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("FOLIODB_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
