/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a betree instance's configuration: where its tree
// state lives, how its nodes are sized, and how it's exposed over HTTP.
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Tree    Tree    `yaml:"tree"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Tree contains the on-disk B-tree's sizing parameters and storage backend.
type Tree struct {
	// Backend selects the Store implementation: "file" for one file per
	// node, or "pebble" for a single embedded Pebble database.
	Backend string `yaml:"backend"`
	// MaxPivots bounds how many separator keys an internal node holds
	// before it splits.
	MaxPivots int `yaml:"max_pivots"`
	// MaxBuffer bounds how many messages an internal node buffers
	// before flushing. A leaf splits once it holds MaxPivots+MaxBuffer
	// keys.
	MaxBuffer int `yaml:"max_buffer"`
}

// Server contains the embedder HTTP API's bind configuration and an
// access key. The key is only stored here; pkg/httpapi does not check
// it, and its routes accept requests without one.
type Server struct {
	Port      int    `yaml:"port"`
	Bind      string `yaml:"bind"`
	AccessKey string `yaml:"access_key"`
}

// Logging contains logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration suitable for local
// development: a file-backed tree under ./data, a generous buffer size,
// and the HTTP API bound to localhost only.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Tree: Tree{
			Backend:   "file",
			MaxPivots: 64,
			MaxBuffer: 256,
		},
		Server: Server{
			Port:      8080,
			Bind:      "127.0.0.1",
			AccessKey: "auto",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Normalize a relative path to an absolute one
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key of
// the given byte length, hex-encoded.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated access
// key and writes it to configPath.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	accessKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate access key: %w", err)
	}
	config.Server.AccessKey = accessKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path:
// ~/.config/betree/config.yaml on every platform, or ./betree.yaml when
// the home directory cannot be determined.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./betree.yaml"
	}

	// Use ~/.config/betree/config.yaml
	configDir := filepath.Join(homeDir, ".config", "betree")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
