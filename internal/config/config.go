// Package config handles prooflens configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Storage
	Storage StorageConfig `json:"storage"`

	// Engine
	Engine EngineConfig `json:"engine"`

	// Features
	Features FeatureConfig `json:"features"`
}

// ServerConfig for HTTP server
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// StorageConfig for the verification history database
type StorageConfig struct {
	Path string `json:"path"` // empty = <data_dir>/prooflens.db
}

// EngineConfig tunes the verification pipeline.
// The completion threshold is intentionally NOT configurable; it is a single
// named constant in the match package.
type EngineConfig struct {
	PixelSampleCap   int   `json:"pixel_sample_cap"` // max pixels sampled for color stats
	LexicalCacheSize int   `json:"lexical_cache_size"`
	VisionCacheSize  int   `json:"vision_cache_size"`
	FillerLabels     bool  `json:"filler_labels"` // random padding labels in detection
	RandomSeed       int64 `json:"random_seed"`   // 0 = time-seeded
}

// FeatureConfig for feature flags
type FeatureConfig struct {
	EnableHistory  bool `json:"enable_history"`  // persist verifications
	EnableProgress bool `json:"enable_progress"` // websocket progress push
	DebugMode      bool `json:"debug_mode"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".prooflens"),
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{},
		Engine: EngineConfig{
			PixelSampleCap:   1000,
			LexicalCacheSize: 512,
			VisionCacheSize:  64,
			FillerLabels:     true,
			RandomSeed:       0,
		},
		Features: FeatureConfig{
			EnableHistory:  true,
			EnableProgress: true,
			DebugMode:      false,
		},
	}
}

// DBPath returns the resolved database path.
func (c *Config) DBPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.DataDir, "prooflens.db")
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Env overrides
	if port := os.Getenv("PROOFLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dir := os.Getenv("PROOFLENS_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	return cfg, nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
