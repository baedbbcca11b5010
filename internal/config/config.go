package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	BindHost         string   `yaml:"bind_host"`
	LogLevel         string   `yaml:"log_level"`
	AppName          string   `yaml:"app_name"` // application label on outgoing notifications
	PushoverToken    string   `yaml:"pushover_token"`
	PushoverUserKeys []string `yaml:"pushover_user_keys"`
	FingerprintsFile string   `yaml:"fingerprints_file"`
	LinearRetrySecs  int      `yaml:"linear_retry_secs"` // fixed delay between delivery retries
	SendDelaySecs    int      `yaml:"send_delay_secs"`   // pacing delay after a successful delivery
	AlertEveryMins   *int64   `yaml:"alert_every_minutes"`
	RealertCron      *string  `yaml:"realert_cron"`
	MetricsAddr      string   `yaml:"metrics_addr"`
	TestMode         bool     `yaml:"test_mode"` // log notifications instead of submitting them
}

func Parse(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	err = yaml.NewDecoder(file).Decode(config)
	if err != nil {
		return nil, err
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.BindHost == "" {
		c.BindHost = "0.0.0.0:3333"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AppName == "" {
		c.AppName = "Grafana"
	}
	if c.LinearRetrySecs == 0 {
		c.LinearRetrySecs = 60
	}
	if c.SendDelaySecs == 0 {
		c.SendDelaySecs = 1
	}
}

func (c *Config) validate() error {
	if c.FingerprintsFile == "" {
		return fmt.Errorf("fingerprints_file is required")
	}
	if len(c.PushoverUserKeys) == 0 {
		return fmt.Errorf("pushover_user_keys is required")
	}
	if !c.TestMode && c.PushoverToken == "" {
		return fmt.Errorf("pushover_token is required")
	}
	return nil
}
