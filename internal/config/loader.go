package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. BOUNTY_ECONOMY_ALLOW_OVERDRAFT.
const EnvPrefix = "BOUNTY"

// DefaultPath returns ~/.bounty/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bounty", "config.yaml")
	}
	return filepath.Join(home, ".bounty", "config.yaml")
}

// Load reads the config file at path (DefaultPath when empty) over the
// defaults, then applies environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("db_path", "BOUNTY_DB", "BOUNTY_DB_PATH"); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Tasks.DefaultDailyLimit < 1 {
		cfg.Tasks.DefaultDailyLimit = 1
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("economy.allow_overdraft", cfg.Economy.AllowOverdraft)
	v.SetDefault("economy.starting_points", cfg.Economy.StartingPoints)
	v.SetDefault("tasks.default_daily_limit", cfg.Tasks.DefaultDailyLimit)
	v.SetDefault("tasks.default_repeatable", cfg.Tasks.DefaultRepeatable)
	v.SetDefault("log.verbose", cfg.Log.Verbose)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default configuration to path, creating its
// directory. An existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := "# bounty configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0o644)
}
