// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/bitfsorg/splitvest-go/revshare"
)

// Hash160 of the compressed generator point and its mainnet address.
const (
	ownerHex = "751e76e8199196d454941c45d1b3a323f1433bd6"
	ownerB58 = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"Owner", cfg.Owner, ""},
		{"StrictShares", cfg.StrictShares, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if !cfg.Mainnet() {
		t.Error("default config should render mainnet addresses")
	}
}

func TestDefaultDataDir_EndsWith_DotSplitvest(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".splitvest") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".splitvest")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	original := Config{
		DataDir:      "/tmp/test-splitvest",
		Network:      "testnet",
		LogLevel:     "debug",
		LogFile:      "/tmp/splitvest.log",
		Owner:        ownerHex,
		StrictShares: true,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded != original {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig nested: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}

func TestSaveConfig_OutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# Splitvest Configuration") {
		t.Error("saved config should start with '# Splitvest Configuration'")
	}
	for _, key := range []string{"datadir", "network", "loglevel", "logfile", "owner", "strictshares"} {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// LoadConfig parser tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig missing file: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	for _, content := range []string{"this-is-not-key-value\n", " = value\n"} {
		_, err := LoadConfig(writeConfig(t, content))
		if !errors.Is(err, ErrInvalidConfigLine) {
			t.Errorf("LoadConfig(%q): got %v, want ErrInvalidConfigLine", content, err)
		}
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	content := `# This is a comment
network = testnet

# Another comment
loglevel = debug
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.DataDir != DefaultDataDir() {
		t.Errorf("DataDir = %q, want default %q", cfg.DataDir, DefaultDataDir())
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "futurekey = futurevalue\nnetwork = testnet\n"))
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
}

func TestLoadConfig_KeysCaseInsensitive(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "Network = regtest\nSTRICTSHARES = 1\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want %q", cfg.Network, "regtest")
	}
	if !cfg.StrictShares {
		t.Error("StrictShares should be true")
	}
}

func TestLoadConfig_InvalidBool(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "strictshares = maybe\n"))
	if !errors.Is(err, ErrInvalidBool) {
		t.Errorf("LoadConfig: got %v, want ErrInvalidBool", err)
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "logfile=/tmp/a=b.log\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "/tmp/a=b.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/a=b.log")
	}
}

func TestLoadConfig_EmptyValue(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "network=\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "" {
		t.Errorf("Network = %q, want empty string", cfg.Network)
	}
	if !errors.Is(ValidateConfig(cfg), ErrInvalidNetwork) {
		t.Error("empty network should fail validation")
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	path := writeConfig(t, "network = testnet\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(path, 0600)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file should fail")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Errorf("unreadable file reported as not found: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "bad_network",
			modify:  func(c *Config) { c.Network = "devnet" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad_owner",
			modify:  func(c *Config) { c.Owner = "not-an-address" },
			wantErr: ErrInvalidOwner,
		},
		{
			name:    "owner_bad_checksum",
			modify:  func(c *Config) { c.Owner = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMX" },
			wantErr: ErrInvalidOwner,
		},
		{
			name: "owner_wrong_network",
			modify: func(c *Config) {
				c.Network = "testnet"
				c.Owner = ownerB58
			},
			wantErr: revshare.ErrNetworkMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, network := range []string{"mainnet", "testnet", "regtest"} {
		cfg := DefaultConfig()
		cfg.Network = network
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", network, err)
		}
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error", "dEbUg"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with loglevel %q: %v", level, err)
			}
		})
	}
}

func TestValidateConfig_OwnerForms(t *testing.T) {
	for _, owner := range []string{ownerHex, ownerB58} {
		cfg := DefaultConfig()
		cfg.Owner = owner
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with owner %q: %v", owner, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Owner and path helpers
// ---------------------------------------------------------------------------

func TestOwnerAddress(t *testing.T) {
	cfg := DefaultConfig()

	addr, err := cfg.OwnerAddress()
	if err != nil {
		t.Fatalf("OwnerAddress with no owner: %v", err)
	}
	if !addr.IsZero() {
		t.Errorf("OwnerAddress with no owner = %s, want zero", addr)
	}

	cfg.Owner = ownerB58
	addr, err = cfg.OwnerAddress()
	if err != nil {
		t.Fatalf("OwnerAddress: %v", err)
	}
	if addr.String() != ownerHex {
		t.Errorf("OwnerAddress = %s, want %s", addr, ownerHex)
	}

	cfg.Owner = "bogus"
	if _, err := cfg.OwnerAddress(); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("OwnerAddress(bogus): got %v, want ErrInvalidOwner", err)
	}

	cfg.Network = "regtest"
	if _, err := cfg.OwnerAddress(); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("OwnerAddress(bogus) on regtest: got %v, want ErrInvalidOwner", err)
	}
	cfg.Owner = ownerB58
	if _, err := cfg.OwnerAddress(); !errors.Is(err, revshare.ErrNetworkMismatch) {
		t.Errorf("mainnet owner on regtest: got %v, want ErrNetworkMismatch", err)
	}
	cfg.Owner = ownerHex
	if _, err := cfg.OwnerAddress(); err != nil {
		t.Errorf("hex owner on regtest: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.splitvest")
	want := filepath.Join("/home/user/.splitvest", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/home/user/.splitvest/")
	want := filepath.Join("/home/user/.splitvest", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestLedgerPath(t *testing.T) {
	got := LedgerPath("/data")
	want := filepath.Join("/data", "ledger.db")
	if got != want {
		t.Errorf("LedgerPath = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// NewLogger tests
// ---------------------------------------------------------------------------

func TestNewLogger_Level(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "WARN"

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNewLogger_File(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "splitvest.log")

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("deposit recorded")
	_ = logger.Sync()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "deposit recorded") {
		t.Errorf("log file missing message: %s", data)
	}
	if !strings.Contains(string(data), `"network":"mainnet"`) {
		t.Errorf("log file missing network field: %s", data)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, err := NewLogger(cfg); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("NewLogger: got %v, want ErrInvalidLogLevel", err)
	}
}
