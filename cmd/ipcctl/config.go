package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the ipcctl configuration, read from ipcctl.yaml, IPCCTL_*
// environment variables and flags, in increasing priority.
type Config struct {
	LogLevel           string `mapstructure:"log-level"`
	Network            string `mapstructure:"network"`
	Socket             string `mapstructure:"socket"`
	ReadBufferSize     int    `mapstructure:"read-buffer-size"`
	PipeReadBufferSize int    `mapstructure:"pipe-read-buffer-size"`
	Dir                string `mapstructure:"dir"`
	Format             string `mapstructure:"format"`
}

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), "ipcctl.sock")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "warn")
	v.SetDefault("network", "unix")
	v.SetDefault("socket", defaultSocketPath())
	v.SetDefault("read-buffer-size", 0)
	v.SetDefault("pipe-read-buffer-size", 0)
	v.SetDefault("dir", "")
	v.SetDefault("format", "text")
}

// loadConfig resolves the configuration for cmd. An explicit configFile must
// exist; otherwise ipcctl.yaml is looked up in the working directory and in
// the user config directory, and a missing file is not an error.
func loadConfig(v *viper.Viper, cmd *cobra.Command, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ipcctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ipcctl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := errors.AsType[viper.ConfigFileNotFoundError](err); configFile != "" || !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("IPCCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// newLogger builds the command's text logger at the configured level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
