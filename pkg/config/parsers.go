package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	Store  string
	Config string
	Set    map[string]bool
}

// EffectiveConfigResult is the outcome of source selection.
type EffectiveConfigResult struct {
	Config    *Config
	Addr      string
	StorePath string
	Source    string // "flags", "config", or "env"
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	storePtr := flag.String("store", "./.foliodb", "Pebble store path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, Store: *storePtr, Config: *cfgPtr, Set: setFlags}
}

// ParseConfigFile resolves the config path and loads the YAML file. A
// missing file is not fatal; parse failures are.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "not found") {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// storePathFromEnv honors the historical aliases for the store location.
// The first defined variable wins, in this order.
func storePathFromEnv() string {
	for _, name := range []string{"FOLIODB_STORE_PATH", "FOLIODB_KV_PATH", "FOLIODB_REDIS_PATH"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ParseConfigEnvs reads FOLIODB_* environment variables into a fresh Config
// and reports whether any were set. It does not mutate a caller config.
func ParseConfigEnvs() (*Config, bool) {
	envCfg := &Config{}
	envUsed := false

	if v := os.Getenv("FOLIODB_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			envCfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				envCfg.Server.Port = pi
			}
		} else {
			envCfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("FOLIODB_SERVER_ADDRESS"); host != "" {
			envUsed = true
			envCfg.Server.Address = host
		}
		if port := os.Getenv("FOLIODB_SERVER_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				envCfg.Server.Port = pi
			}
		}
	}

	if v := storePathFromEnv(); v != "" {
		envUsed = true
		envCfg.Storage.StorePath = v
	}

	if v := os.Getenv("FOLIODB_ADMIN_EMAIL"); v != "" {
		envUsed = true
		envCfg.Auth.AdminEmail = v
	}
	if v := os.Getenv("FOLIODB_ADMIN_PASSWORD"); v != "" {
		envUsed = true
		envCfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("FOLIODB_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			envCfg.Auth.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("FOLIODB_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Auth.RateLimit.Burst = n
		}
	}

	if v := os.Getenv("FOLIODB_BACKUP_SCHEDULE"); v != "" {
		envUsed = true
		envCfg.Backups.Schedule = v
	}
	if v := os.Getenv("FOLIODB_BACKUP_KEEP"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Backups.Keep = n
		}
	}
	if v := os.Getenv("FOLIODB_BACKUP_MAX_SIZE"); v != "" {
		envUsed = true
		envCfg.Backups.MaxSize = v
	}

	if v := os.Getenv("FOLIODB_LOG_LEVEL"); v != "" {
		envUsed = true
		envCfg.Logging.Level = v
	}
	if v := os.Getenv("FOLIODB_LOG_SINK"); v != "" {
		envUsed = true
		envCfg.Logging.Sink = v
	}

	if v := os.Getenv("FOLIODB_INGEST_ADDR"); v != "" {
		envUsed = true
		envCfg.Ingest.Address = v
	}

	if c := os.Getenv("FOLIODB_TLS_CERT"); c != "" {
		envUsed = true
		envCfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("FOLIODB_TLS_KEY"); k != "" {
		envUsed = true
		envCfg.Server.TLS.KeyFile = k
	}

	return envCfg, envUsed
}

// LoadEffectiveConfig decides which single source to use. An explicit
// --config requires the file to exist and uses it exclusively; explicit
// addr/store flags win next; then a present config file; then env.
func LoadEffectiveConfig(flags Flags, fileCfg *Config, fileExists bool, envCfg *Config) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult

	if flags.Set["config"] {
		if !fileExists {
			return res, fmt.Errorf("config file %s not found", flags.Config)
		}
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.StorePath = fileCfg.Storage.StorePath
		res.Source = "config"
		return res, nil
	}

	if flags.Set["addr"] || flags.Set["store"] {
		addr := flags.Addr
		if !flags.Set["addr"] {
			addr = envCfg.Addr()
			if addr == "" {
				addr = fileCfg.Addr()
			}
		}
		storePath := flags.Store
		if !flags.Set["store"] {
			if p := strings.TrimSpace(envCfg.Storage.StorePath); p != "" {
				storePath = p
			} else if p := strings.TrimSpace(fileCfg.Storage.StorePath); p != "" {
				storePath = p
			}
		}
		out := &Config{}
		out.Server.Address = addr
		out.Server.Port = parsePortFromAddr(addr)
		out.Storage.StorePath = storePath
		out.Auth = envCfg.Auth
		out.Backups = envCfg.Backups
		out.Logging = envCfg.Logging
		out.Ingest = envCfg.Ingest
		res.Config = out
		res.Addr = addr
		res.StorePath = storePath
		res.Source = "flags"
		return res, nil
	}

	if fileExists {
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.StorePath = fileCfg.Storage.StorePath
		res.Source = "config"
		return res, nil
	}

	res.Config = envCfg
	res.Addr = envCfg.Addr()
	res.StorePath = envCfg.Storage.StorePath
	res.Source = "env"
	return res, nil
}

// parsePortFromAddr extracts the port integer from a host:port string.
func parsePortFromAddr(a string) int {
	if a == "" {
		return 0
	}
	if _, p, err := net.SplitHostPort(a); err == nil {
		if pi, err := strconv.Atoi(p); err == nil {
			return pi
		}
	}
	return 0
}
