package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// ErrNoConfig is returned by ResolveConfigPath when no config file exists in any searched location.
var ErrNoConfig = errors.New("no config file found")

type Config struct {
	Extract Extract `yaml:"extract"`
	Report  Report  `yaml:"report"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Extract struct {
	LenientJSON bool `yaml:"lenient_json"`
}

type Report struct {
	Title         string `yaml:"title"`
	IncludeCharts bool   `yaml:"include_charts"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for chatreport.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "chatreport")
}

// DataDir returns the XDG data directory for chatreport.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "chatreport")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/chatreport/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"%w; searched:\n  %s\n  ./config.yaml\n\nRun 'chatreport init' to create a default config",
		ErrNoConfig, xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Resolve loads the config at the resolved path. Without an explicit path and
// with no config file on disk, the embedded defaults are used.
func Resolve(explicit string) (*Config, string, error) {
	path, err := ResolveConfigPath(explicit)
	if err != nil {
		if explicit == "" && errors.Is(err, ErrNoConfig) {
			cfg, err := parse(DefaultConfigYAML)
			return cfg, "", err
		}
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Report: Report{
			Title:         "Analysis Report",
			IncludeCharts: true,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DatabasePath returns the conversation store location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "chatreport.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
