package models

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`

	// Subjects is a static person directory used when no database is
	// configured.
	Subjects map[int64]string `yaml:"subjects"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type StorageConfig struct {
	PublicRoot    string `yaml:"public_root"`
	StagingDir    string `yaml:"staging_dir"`
	ProductionDir string `yaml:"production_dir"`
}

type PipelineConfig struct {
	MaxDimension   int      `yaml:"max_dimension"`
	AllowedFormats []string `yaml:"allowed_formats"`
	// CleanupPartial removes already written files when a later write of the
	// same upload fails. Off by default so orphans stay for inspection.
	CleanupPartial bool     `yaml:"cleanup_partial"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MigrationsPath string `yaml:"migrations_path"`
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	EventsTopic    string   `yaml:"events_topic"`
	DecisionsTopic string   `yaml:"decisions_topic"`
	GroupID        string   `yaml:"group_id"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// LoadConfig reads the YAML file at path, fills defaults and applies
// IMAGEINGEST_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for in-memory YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.Storage.PublicRoot == "" {
		c.Storage.PublicRoot = "./public"
	}
	if c.Storage.StagingDir == "" {
		c.Storage.StagingDir = "uploads/staging"
	}
	if c.Pipeline.MaxDimension <= 0 {
		c.Pipeline.MaxDimension = 1200
	}
	if len(c.Pipeline.AllowedFormats) == 0 {
		c.Pipeline.AllowedFormats = []string{"jpeg", "png", "webp"}
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "image-assets"
	}
	if c.Kafka.DecisionsTopic == "" {
		c.Kafka.DecisionsTopic = "moderation-decisions"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "image-ingest-group"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IMAGEINGEST_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("IMAGEINGEST_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("IMAGEINGEST_PUBLIC_ROOT"); v != "" {
		c.Storage.PublicRoot = v
	}
	if v := os.Getenv("IMAGEINGEST_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("IMAGEINGEST_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Kafka.Brokers = brokers
	}
	if v := os.Getenv("IMAGEINGEST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
