package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string   `yaml:"port"`
	DBDSN        string   `yaml:"db_dsn"`
	LogFile      string   `yaml:"log_file"`
	LogLevel     string   `yaml:"log_level"`
	SeedDemo     bool     `yaml:"seed_demo"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	TraceStdout  bool     `yaml:"trace_stdout"`
}

func defaults() Config {
	return Config{
		Port:       "8080",
		DBDSN:      "productcatalog.db", // sqlite file in project root
		LogFile:    "./productcatalog.log",
		LogLevel:   "info",
		KafkaTopic: "product-notifications",
	}
}

// Load resolves configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := overlayEnv(&cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s SEED_DEMO=%t KAFKA_BROKERS=%s KAFKA_TOPIC=%s TRACE_STDOUT=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.SeedDemo,
		strings.Join(cfg.KafkaBrokers, ","), cfg.KafkaTopic, cfg.TraceStdout)
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func overlayEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("KAFKA_TOPIC", &cfg.KafkaTopic)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	if err := flag("SEED_DEMO", &cfg.SeedDemo); err != nil {
		return err
	}
	return flag("TRACE_STDOUT", &cfg.TraceStdout)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
