package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Load reads configuration with ENV interpolation. If configPath is empty,
// default locations are searched; finding none is not an error and yields
// Defaults. In every case a missing api_key is filled from the provider's
// conventional environment variable.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if path != "" {
		if err := loadFile(cfg, path, getenv); err != nil {
			return nil, err
		}
	}

	if cfg.APIKey == "" {
		for _, name := range credentialEnv[cfg.Provider] {
			if v := getenv(name); v != "" {
				cfg.APIKey = v
				break
			}
		}
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of Defaults without touching the filesystem.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, getenv func(string) string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Path = absPath
	cfg.BaseDir = filepath.Dir(absPath)
	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(cfg.BaseDir, cfg.Cache.Path)
	}
	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > UNITAI_CONFIG env > ./unitai.yaml > ~/.config/unitai/unitai.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("UNITAI_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("UNITAI_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("unitai.yaml"); err == nil {
		return "unitai.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "unitai", "unitai.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	if getenv == nil {
		getenv = os.Getenv
	}
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}
