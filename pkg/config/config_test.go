package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
storage:
  store_path: /var/lib/foliodb
backups:
  schedule: "0 3 * * *"
  keep: 5
  max_size: 64MB
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("Addr: %q", cfg.Addr())
	}
	if cfg.Storage.StorePath != "/var/lib/foliodb" {
		t.Fatalf("StorePath: %q", cfg.Storage.StorePath)
	}
	if cfg.Backups.Keep != 5 {
		t.Fatalf("Keep: %d", cfg.Backups.Keep)
	}
	if got := cfg.BackupMaxBytes(); got != 64*1000*1000 {
		t.Fatalf("BackupMaxBytes: %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file did not error")
	}
}

func TestAddrDefaults(t *testing.T) {
	c := &Config{}
	if c.Addr() != "0.0.0.0:8080" {
		t.Fatalf("default addr: %q", c.Addr())
	}
}

func TestBackupMaxBytesUnparseable(t *testing.T) {
	c := &Config{}
	c.Backups.MaxSize = "a lot"
	if got := c.BackupMaxBytes(); got != 0 {
		t.Fatalf("unparseable cap: %d", got)
	}
}

func TestStorePathEnvAliases(t *testing.T) {
	t.Setenv("FOLIODB_STORE_PATH", "")
	t.Setenv("FOLIODB_KV_PATH", "/kv")
	t.Setenv("FOLIODB_REDIS_PATH", "/redis")
	cfg, used := ParseConfigEnvs()
	if !used || cfg.Storage.StorePath != "/kv" {
		t.Fatalf("alias order: used=%v path=%q", used, cfg.Storage.StorePath)
	}

	// The primary name wins over both aliases.
	t.Setenv("FOLIODB_STORE_PATH", "/primary")
	cfg, _ = ParseConfigEnvs()
	if cfg.Storage.StorePath != "/primary" {
		t.Fatalf("primary name lost: %q", cfg.Storage.StorePath)
	}
}

func TestParseConfigEnvsAddr(t *testing.T) {
	t.Setenv("FOLIODB_ADDR", "0.0.0.0:9000")
	cfg, used := ParseConfigEnvs()
	if !used || cfg.Server.Address != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Fatalf("addr env: %+v used=%v", cfg.Server, used)
	}

	t.Setenv("FOLIODB_ADDR", "")
	t.Setenv("FOLIODB_SERVER_ADDRESS", "127.0.0.1")
	t.Setenv("FOLIODB_SERVER_PORT", "9001")
	cfg, _ = ParseConfigEnvs()
	if cfg.Server.Address != "127.0.0.1" || cfg.Server.Port != 9001 {
		t.Fatalf("split addr env: %+v", cfg.Server)
	}
}

func TestLoadEffectiveConfigExplicitConfigFlag(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.Port = 9090
	flags := Flags{Config: "config.yaml", Set: map[string]bool{"config": true}}

	res, err := LoadEffectiveConfig(flags, fileCfg, true, &Config{})
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if res.Source != "config" || res.Addr != "0.0.0.0:9090" {
		t.Fatalf("explicit config: %+v", res)
	}

	// An explicit --config pointing at a missing file is fatal.
	if _, err := LoadEffectiveConfig(flags, &Config{}, false, &Config{}); err == nil {
		t.Fatalf("missing explicit config did not error")
	}
}

func TestLoadEffectiveConfigFlagsWin(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Storage.StorePath = "/from-file"
	envCfg := &Config{}
	envCfg.Auth.AdminEmail = "admin@example.com"
	flags := Flags{
		Addr:  ":7070",
		Store: "/from-flag",
		Set:   map[string]bool{"addr": true, "store": true},
	}

	res, err := LoadEffectiveConfig(flags, fileCfg, true, envCfg)
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if res.Source != "flags" || res.Addr != ":7070" || res.StorePath != "/from-flag" {
		t.Fatalf("flags source: %+v", res)
	}
	// Ambient sections still come along from env.
	if res.Config.Auth.AdminEmail != "admin@example.com" {
		t.Fatalf("env auth section lost: %+v", res.Config.Auth)
	}
}

func TestLoadEffectiveConfigFileThenEnv(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Storage.StorePath = "/from-file"
	envCfg := &Config{}
	envCfg.Storage.StorePath = "/from-env"
	flags := Flags{Set: map[string]bool{}}

	res, err := LoadEffectiveConfig(flags, fileCfg, true, envCfg)
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if res.Source != "config" || res.StorePath != "/from-file" {
		t.Fatalf("file source: %+v", res)
	}

	res, err = LoadEffectiveConfig(flags, &Config{}, false, envCfg)
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if res.Source != "env" || res.StorePath != "/from-env" {
		t.Fatalf("env source: %+v", res)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("FOLIODB_CONFIG", "/env/config.yaml")
	if got := ResolveConfigPath("./config.yaml", false); got != "/env/config.yaml" {
		t.Fatalf("env path: %q", got)
	}
	// An explicit flag beats the env variable.
	if got := ResolveConfigPath("/flag/config.yaml", true); got != "/flag/config.yaml" {
		t.Fatalf("flag path: %q", got)
	}
}
