package config

// Config is the bounty configuration file.
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// DBPath overrides the database location. BOUNTY_DB takes precedence.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`

	Economy EconomyConfig `yaml:"economy" mapstructure:"economy"`
	Tasks   TasksConfig   `yaml:"tasks" mapstructure:"tasks"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

type EconomyConfig struct {
	// AllowOverdraft lets spending take the balance below zero.
	AllowOverdraft bool `yaml:"allow_overdraft" mapstructure:"allow_overdraft"`
	// StartingPoints is credited once, when the user document is created.
	StartingPoints int64 `yaml:"starting_points" mapstructure:"starting_points"`
}

type TasksConfig struct {
	DefaultDailyLimit int  `yaml:"default_daily_limit" mapstructure:"default_daily_limit"`
	DefaultRepeatable bool `yaml:"default_repeatable" mapstructure:"default_repeatable"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Economy: EconomyConfig{
			AllowOverdraft: true,
		},
		Tasks: TasksConfig{
			DefaultDailyLimit: 1,
			DefaultRepeatable: true,
		},
	}
}
