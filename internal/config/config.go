package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds everything read from the settings file. The file is loaded
// once at startup; there is no hot-reload.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Import   ImportConfig   `mapstructure:"import"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ImportConfig points the CSV import at its data directory.
type ImportConfig struct {
	Dir string `mapstructure:"dir"`
}

// DSN renders the connection string for the postgres driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Load reads the JSON settings file at path. A missing or unreadable file is
// an error; the caller treats it as fatal at startup. Individual keys can be
// overridden through LIBRARY_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("logging.level", "info")
	v.SetDefault("import.dir", "data")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	return validator.New().Struct(c)
}
