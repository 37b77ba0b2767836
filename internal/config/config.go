// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package config loads apvault settings from config.yaml in the data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/ledger"
	"github.com/aplane-algo/apvault/internal/program"
)

// Config holds apvault configuration settings
type Config struct {
	ProgramID  string `yaml:"program_id" description:"Address of the vault program" default:"C1Hj34Yrhc2R4vnFbRtABeoRLozAnx9VhgpScg3hHuHp"`
	KeyFile    string `yaml:"key_file" description:"Signer key file (relative to data dir)" default:"signer.key"`
	LedgerFile string `yaml:"ledger_file" description:"Local ledger snapshot (relative to data dir)" default:"ledger.yaml"`

	// Minimum balance rule applied when the vault is allocated
	Rent ledger.RentConfig `yaml:"rent" description:"Minimum balance rule for allocated accounts"`

	ScriptTimeoutSeconds int `yaml:"script_timeout_seconds" description:"Abort scripts running longer than this (0 = no limit)" default:"30"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ProgramID:            program.DefaultProgramID.String(),
		KeyFile:              "signer.key",
		LedgerFile:           "ledger.yaml",
		Rent:                 ledger.DefaultRentConfig(),
		ScriptTimeoutSeconds: 30,
	}
}

// DefaultDataDir is the default data directory.
const DefaultDataDir = "~/.apvault"

// GetDataDir returns the data directory.
// Resolution order: -d flag > APVAULT_DATA env var > ~/.apvault
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("APVAULT_DATA"); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".apvault")
}

// GetConfigPath returns the path to the config file in the data directory.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// Load reads config.yaml from dataDir and resolves relative paths against it.
// A missing file yields the defaults.
func Load(dataDir string) (Config, error) {
	cfg, err := LoadFromPath(GetConfigPath(dataDir))
	if err != nil {
		return cfg, err
	}
	cfg.KeyFile = ResolvePath(cfg.KeyFile, dataDir)
	cfg.LedgerFile = ResolvePath(cfg.LedgerFile, dataDir)
	return cfg, nil
}

// LoadFromPath loads configuration from path, overlaying the defaults.
func LoadFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.Program(); err != nil {
		return err
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file must not be empty")
	}
	if c.LedgerFile == "" {
		return fmt.Errorf("ledger_file must not be empty")
	}
	if c.Rent.LamportsPerByte == 0 {
		return fmt.Errorf("rent.lamports_per_byte must be positive")
	}
	if c.ScriptTimeoutSeconds < 0 {
		return fmt.Errorf("script_timeout_seconds must not be negative")
	}
	return nil
}

// Program parses ProgramID.
func (c *Config) Program() (address.Address, error) {
	id, err := address.Parse(c.ProgramID)
	if err != nil {
		return address.Address{}, fmt.Errorf("invalid program_id in config: %w", err)
	}
	if id == ledger.SystemProgramID {
		return address.Address{}, fmt.Errorf("program_id must not be the system program")
	}
	return id, nil
}

// ResolvePath expands ~ and makes relative paths relative to baseDir.
func ResolvePath(path, baseDir string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
