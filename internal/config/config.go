// internal/config/config.go
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the daemon. The mapstructure tags
// are used by Viper to unmarshal the data, the validate tags by the
// validation pass in Load.
type Config struct {
	ListenAddr        string `mapstructure:"listen_addr" validate:"required"`
	PoolSize          int    `mapstructure:"pool_size" validate:"required,min=1"`
	MetricsListenAddr string `mapstructure:"metrics_listen_addr" validate:"required"`
}

// Load loads configuration from defaults, an optional config file and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("listen_addr", "127.0.0.1:5555")
	viper.SetDefault("pool_size", 4)
	viper.SetDefault("metrics_listen_addr", ":9090")

	// Set config file details
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Read environment variables
	viper.AutomaticEnv()

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; defaults and env vars apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
