package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"gopkg.in/yaml.v3"
)

// defaults applied to fields left empty in the config file
const (
	defaultNATSURL       = "nats://127.0.0.1:4222"
	defaultBundleSubject = "txbridge.bundles"
	defaultBatchSubject  = "txbridge.batches.packets"
	defaultListenAddr    = "127.0.0.1:8088"
	defaultBundleSize    = 5
	defaultBatchExpiryMs = 2000

	defaultLogDirectory = "log"
	defaultLogFile      = "txbridge.log"
	defaultLogCount     = 10
	defaultLogSize      = 1024 * 1024
)

// NATSConfig holds the relay's broker connection and subjects.
type NATSConfig struct {
	URL           string `yaml:"url"`
	BundleSubject string `yaml:"bundle_subject"`
	BatchSubject  string `yaml:"batch_subject"`
}

// APIConfig holds the HTTP helper API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ReplayConfig controls pcap replay: datagrams are grouped into bundles of
// BundleSize transactions and into packet batches that expire BatchExpiryMs
// after they are published.
type ReplayConfig struct {
	PcapPath      string `yaml:"pcap_path"`
	BundleSize    int    `yaml:"bundle_size"`
	BatchExpiryMs uint32 `yaml:"batch_expiry_ms"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	NATS    NATSConfig           `yaml:"nats"`
	API     APIConfig            `yaml:"api"`
	Replay  ReplayConfig         `yaml:"replay"`
	Logging logger.Configuration `yaml:"logging"`
}

// LoadConfig reads the configuration from a YAML file and fills in defaults.
// A relative log directory is taken relative to the config file.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	if !filepath.IsAbs(cfg.Logging.Directory) {
		cfg.Logging.Directory = filepath.Join(filepath.Dir(filePath), cfg.Logging.Directory)
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = defaultNATSURL
	}
	if cfg.NATS.BundleSubject == "" {
		cfg.NATS.BundleSubject = defaultBundleSubject
	}
	if cfg.NATS.BatchSubject == "" {
		cfg.NATS.BatchSubject = defaultBatchSubject
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = defaultListenAddr
	}
	if cfg.Replay.BundleSize <= 0 {
		cfg.Replay.BundleSize = defaultBundleSize
	}
	if cfg.Replay.BatchExpiryMs == 0 {
		cfg.Replay.BatchExpiryMs = defaultBatchExpiryMs
	}

	if cfg.Logging.Directory == "" {
		cfg.Logging.Directory = defaultLogDirectory
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = defaultLogFile
	}
	if cfg.Logging.Count <= 0 {
		cfg.Logging.Count = defaultLogCount
	}
	if cfg.Logging.Size <= 0 {
		cfg.Logging.Size = defaultLogSize
	}
	if len(cfg.Logging.Levels) == 0 {
		cfg.Logging.Levels = map[string]string{logger.DefaultTag: "info"}
	}
}
