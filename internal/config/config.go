// Package config provides configuration loading, validation, and management
// for the WorkflowBot application. It handles reading from YAML files,
// environment variable overrides, default values, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the WorkflowBot system.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the inbound HTTP listener.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"          validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  validate:"min=1s,max=5m"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=1s,max=5m"`
}

// BotConfig carries the transport credentials and user-facing messages.
// AppID and AppPassword must be available before any router construction;
// the connector refuses to start without them.
type BotConfig struct {
	AppID       string `mapstructure:"app_id"       validate:"required"`
	AppPassword string `mapstructure:"app_password" validate:"required"`
	TokenURL    string `mapstructure:"token_url"    validate:"url"`
	APIScope    string `mapstructure:"api_scope"    validate:"required"`

	MsgBroadcast string `mapstructure:"msg_broadcast"`
}

// DatabaseConfig controls the notification target store persistence.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the scheduled task table, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at the given path (optional)
// 3. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow a missing config file; defaults plus environment still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("server.addr", ":3978")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("bot.token_url", "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token")
	v.SetDefault("bot.api_scope", "https://api.botframework.com/.default")
	v.SetDefault("bot.msg_broadcast", "WorkflowBot is up and running.")

	v.SetDefault("database.path", "storage.db")
}
