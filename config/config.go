package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/fiximulator/fiximulator/pkg/infra/postgres"
)

type AppConfig struct {
	ServiceName     string `yaml:"service_name"`
	FixConfig       string `yaml:"fix_config"`
	SettingsFile    string `yaml:"settings_file"`
	InstrumentsFile string `yaml:"instruments_file"`
	MetricsAddr     string `yaml:"metrics_addr"`

	// AuditDB is optional; without it messages are only logged.
	AuditDB *postgres_wrapper.PostgresConfig `yaml:"audit_db"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
