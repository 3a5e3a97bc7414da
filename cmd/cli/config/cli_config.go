// Package config loads CLI preferences from the user's config file and
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type CLIConfig struct {
	ServerURL     string      `mapstructure:"server_url"`
	DefaultOutput string      `mapstructure:"default_output"`
	DefaultFormat string      `mapstructure:"default_format"`
	Preferences   Preferences `mapstructure:"preferences"`
}

type Preferences struct {
	Horizon        int    `mapstructure:"horizon"`
	ModelKind      string `mapstructure:"model_kind"`
	SeasonalPeriod int    `mapstructure:"seasonal_period"`
	TimeZone       string `mapstructure:"timezone"`
}

func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		ServerURL:     "http://localhost:8080",
		DefaultOutput: "-",
		DefaultFormat: "text",
		Preferences: Preferences{
			Horizon:        10,
			ModelKind:      "exponential_smoothing",
			SeasonalPeriod: 12,
			TimeZone:       "UTC",
		},
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		configPath := filepath.Join(home, ".tsforecast")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TSFORECAST")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", config.ServerURL)
	viper.SetDefault("default_output", config.DefaultOutput)
	viper.SetDefault("default_format", config.DefaultFormat)
	viper.SetDefault("preferences.horizon", config.Preferences.Horizon)
	viper.SetDefault("preferences.model_kind", config.Preferences.ModelKind)
	viper.SetDefault("preferences.seasonal_period", config.Preferences.SeasonalPeriod)
	viper.SetDefault("preferences.timezone", config.Preferences.TimeZone)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tsforecast", "config.yaml")
}
