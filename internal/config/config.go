// Package config loads service configuration from an optional config
// file and GAMEREVIEW_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of the analysis service.
type Config struct {
	ServerAddr      string `mapstructure:"SERVER_ADDR"`
	EnginePath      string `mapstructure:"ENGINE_PATH"`
	EngineCacheDir  string `mapstructure:"ENGINE_CACHE_DIR"`
	DisableDownload bool   `mapstructure:"DISABLE_DOWNLOAD"`
	BookDir         string `mapstructure:"BOOK_DIR"`
	Depth           int    `mapstructure:"DEPTH"`
	CacheSize       int    `mapstructure:"CACHE_SIZE"`
	Verbose         bool   `mapstructure:"VERBOSE"`
}

// Load reads configuration from cfgPath (ignored when empty) and the
// environment. Environment variables take precedence over the file.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("ENGINE_PATH", "")
	v.SetDefault("ENGINE_CACHE_DIR", "")
	v.SetDefault("DISABLE_DOWNLOAD", false)
	v.SetDefault("BOOK_DIR", "")
	v.SetDefault("DEPTH", 12)
	v.SetDefault("CACHE_SIZE", 4096)
	v.SetDefault("VERBOSE", false)

	v.SetEnvPrefix("GAMEREVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Depth < 1 {
		return nil, fmt.Errorf("invalid depth %d: must be at least 1", cfg.Depth)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("invalid cache size %d: must be at least 1", cfg.CacheSize)
	}

	return &cfg, nil
}
