// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the ledger's key = value configuration file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitfsorg/splitvest-go/revshare"
)

const (
	configFileName = "config"
	ledgerFileName = "ledger.db"
	dataDirName    = ".splitvest"
)

// Config holds the settings of a ledger instance.
type Config struct {
	DataDir      string // Directory holding the config file and ledger database
	Network      string // "mainnet", "testnet" or "regtest"; selects the base58 address prefix
	LogLevel     string // "debug", "info", "warn" or "error"
	LogFile      string // Empty logs to stderr
	Owner        string // Address allowed to replace the beneficiary set
	StrictShares bool   // Reject beneficiary sets that do not sum to the total unit
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		DataDir:  DefaultDataDir(),
		Network:  "mainnet",
		LogLevel: "info",
	}
}

// DefaultDataDir returns ~/.splitvest, or .splitvest in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dataDirName
	}
	return filepath.Join(home, dataDirName)
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// LedgerPath returns the ledger database location inside dataDir.
func LedgerPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), ledgerFileName)
}

// Mainnet reports whether base58 addresses use the mainnet prefix. Testnet
// and regtest share the testnet prefix.
func (c Config) Mainnet() bool {
	return c.Network == "mainnet"
}

// OwnerAddress parses the configured owner. A base58 owner must be encoded
// for the configured network. The zero address is returned when no owner is
// set.
func (c Config) OwnerAddress() (revshare.Address, error) {
	if c.Owner == "" {
		return revshare.Address{}, nil
	}
	addr, err := revshare.ParseNetworkAddress(c.Owner, c.Mainnet())
	if err != nil {
		return addr, fmt.Errorf("%w: %w", ErrInvalidOwner, err)
	}
	return addr, nil
}

// LoadConfig reads a config file on top of DefaultConfig. Blank lines and
// lines starting with '#' are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "owner":
		c.Owner = value
	case "strictshares":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: strictshares = %q", ErrInvalidBool, value)
		}
		c.StrictShares = b
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Splitvest Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "owner = %s\n", cfg.Owner)
	fmt.Fprintf(&b, "strictshares = %t\n", cfg.StrictShares)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
