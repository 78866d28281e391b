package main

import (
	"bitbucket.org/sotavant/caster-skill/internal/notifier"
	"bitbucket.org/sotavant/caster-skill/internal/skill"
	"flag"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

type config struct {
	RunAddr  string                 `yaml:"address"`
	LogLevel string                 `yaml:"log_level"`
	Skill    skill.Config           `yaml:"skill"`
	Webhook  notifier.TriggerConfig `yaml:"webhook"`
}

// parseFlags собирает конфигурацию: YAML-файл, затем флаги, затем переменные окружения.
func parseFlags(args []string, getenv func(string) string) (config, error) {
	var (
		cfg        config
		configPath string
	)

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&configPath, "c", "", "path to YAML config")
	fs.StringVar(&cfg.RunAddr, "a", ":8080", "address and port")
	fs.StringVar(&cfg.LogLevel, "l", "debug", "log level")
	fs.StringVar(&cfg.Skill.ApplicationID, "app-id", "", "skill application id")
	fs.StringVar(&cfg.Webhook.BaseURL, "webhook-url", notifier.DefaultBaseURL, "trigger service base URL")
	fs.StringVar(&cfg.Webhook.Event, "webhook-event", notifier.DefaultEvent, "trigger event name")
	fs.StringVar(&cfg.Webhook.Key, "webhook-key", "", "trigger service key")
	fs.DurationVar(&cfg.Webhook.Timeout, "webhook-timeout", notifier.DefaultTimeout, "trigger request timeout")
	if err := fs.Parse(args[1:]); err != nil {
		return cfg, err
	}

	if envConfig := getenv("CONFIG"); envConfig != "" {
		configPath = envConfig
	}

	if configPath != "" {
		// флаги из командной строки важнее значений из файла
		explicit := map[string]string{}
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

		if err := loadConfigFile(configPath, &cfg); err != nil {
			return cfg, err
		}

		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return cfg, err
			}
		}
	}

	if envRunAddr := getenv("RUN_ADDR"); envRunAddr != "" {
		cfg.RunAddr = envRunAddr
	}

	if envLogLevel := getenv("LOG_LEVEL"); envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if envAppID := getenv("APP_ID"); envAppID != "" {
		cfg.Skill.ApplicationID = envAppID
	}

	if envWebhookURL := getenv("WEBHOOK_URL"); envWebhookURL != "" {
		cfg.Webhook.BaseURL = envWebhookURL
	}

	if envWebhookEvent := getenv("WEBHOOK_EVENT"); envWebhookEvent != "" {
		cfg.Webhook.Event = envWebhookEvent
	}

	if envWebhookKey := getenv("WEBHOOK_KEY"); envWebhookKey != "" {
		cfg.Webhook.Key = envWebhookKey
	}

	if envWebhookTimeout := getenv("WEBHOOK_TIMEOUT"); envWebhookTimeout != "" {
		d, err := time.ParseDuration(envWebhookTimeout)
		if err != nil {
			return cfg, fmt.Errorf("WEBHOOK_TIMEOUT: %w", err)
		}
		cfg.Webhook.Timeout = d
	}

	return cfg, nil
}

func loadConfigFile(path string, cfg *config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}
