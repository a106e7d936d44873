package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chemviz/chemviz/internal/credstore"
	"github.com/chemviz/chemviz/internal/model"
)

// cliConfig holds the TUI client configuration.
type cliConfig struct {
	APIURL          string        `mapstructure:"api-url"`
	Skin            string        `mapstructure:"skin"`
	CredentialsPath string        `mapstructure:"credentials-path"`
	DownloadDir     string        `mapstructure:"download-dir"`
	SessionGrace    time.Duration `mapstructure:"session-grace-period"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CHEMVIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-url", model.DefaultAPIURL)
	v.SetDefault("skin", model.DefaultSkin)
	credPath, err := credstore.DefaultPath()
	if err != nil {
		return cfg, err
	}
	v.SetDefault("credentials-path", credPath)
	v.SetDefault("download-dir", filepath.Join(home, "Downloads"))
	v.SetDefault("session-grace-period", model.DefaultGracePeriod)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "chemviz", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
