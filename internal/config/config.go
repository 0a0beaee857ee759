package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvExternalTools selects the external-tool extraction path when set to
// "true" (case-insensitive). It overrides the config file.
const EnvExternalTools = "VERT_USE_EXTERNAL_TOOLS"

type Config struct {
	LogLevel         string `toml:"log_level"`
	UseExternalTools bool   `toml:"use_external_tools"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "INFO",
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	configPath := filepath.Join(home, ".vert", "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".vert", "config.toml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ExternalToolsEnabled reports whether extraction should shell out to the
// platform's tar/unzip binaries. The environment variable wins when set;
// any value other than "true" keeps the native path.
func (c *Config) ExternalToolsEnabled() bool {
	if v, ok := os.LookupEnv(EnvExternalTools); ok {
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return c.UseExternalTools
}
