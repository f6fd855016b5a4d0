package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type config struct {
	BaseURL   string   `mapstructure:"base_url"`
	Token     string   `mapstructure:"token"`
	Secret    string   `mapstructure:"secret"`
	Source    string   `mapstructure:"source"`
	Actor     string   `mapstructure:"actor"`
	Interval  string   `mapstructure:"interval"`
	BatchSize int      `mapstructure:"batch_size"`
	Recipes   []string `mapstructure:"recipes"`
	Queries   []string `mapstructure:"queries"`
}

func loadConfig(path string) (config, time.Duration, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, 0, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("source", "mise/activitygen")
	v.SetDefault("interval", "1s")
	v.SetDefault("batch_size", 10)
	v.SetDefault("recipes", []string{"r-1:Shakshuka", "r-2:Dal tadka", "r-3:Pho"})
	v.SetDefault("queries", []string{"eggs", "lentils", "noodles"})
	if err := v.ReadInConfig(); err != nil {
		return config{}, 0, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, 0, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Actor = strings.TrimSpace(cfg.Actor)
	if cfg.BaseURL == "" || cfg.Token == "" || cfg.Secret == "" || cfg.Actor == "" {
		return config{}, 0, fmt.Errorf("config must include base_url, token, secret, actor")
	}
	if len(cfg.Recipes) == 0 {
		return config{}, 0, fmt.Errorf("recipes must not be empty")
	}

	interval, err := time.ParseDuration(strings.TrimSpace(cfg.Interval))
	if err != nil {
		return config{}, 0, fmt.Errorf("invalid interval duration: %w", err)
	}
	if interval <= 0 {
		return config{}, 0, fmt.Errorf("interval must be positive")
	}
	return cfg, interval, nil
}

// recipe splits an "id:name" entry.
func recipe(entry string) (string, string) {
	id, name, _ := strings.Cut(strings.TrimSpace(entry), ":")
	return strings.TrimSpace(id), strings.TrimSpace(name)
}
