package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config keys recognized in config.yaml.
const (
	cfgKeyDataDir      = "data_dir"
	cfgKeyListenAddr   = "listen_addr"
	cfgKeyBaseURL      = "base_url"
	cfgKeyMediaDir     = "media_dir"
	cfgKeyAPIURL       = "api_url"
	cfgKeyKafkaBrokers = "kafka_brokers"
	cfgKeyKafkaTopic   = "kafka_topic"
)

// Defaults for a single-machine setup: one process serves the API and the
// media files, and the console talks to it over loopback.
const (
	defaultListenAddr = ":5000"
	defaultBaseURL    = "http://localhost:5000"
	defaultAPIURL     = "http://localhost:5000"
	defaultKafkaTopic = "storefront-events"
)

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	DataDir      string   `yaml:"data_dir,omitempty"`
	ListenAddr   string   `yaml:"listen_addr"`
	BaseURL      string   `yaml:"base_url"`
	MediaDir     string   `yaml:"media_dir,omitempty"`
	APIURL       string   `yaml:"api_url"`
	KafkaBrokers []string `yaml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `yaml:"kafka_topic,omitempty"`
}

// loadConfig reads config.yaml from the config directory using Viper. A
// missing file is not an error; the defaults cover every key.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetDefault(cfgKeyBaseURL, defaultBaseURL)
	v.SetDefault(cfgKeyAPIURL, defaultAPIURL)
	v.SetDefault(cfgKeyKafkaTopic, defaultKafkaTopic)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := configFile{
		DataDir:    dataDir,
		ListenAddr: defaultListenAddr,
		BaseURL:    defaultBaseURL,
		APIURL:     defaultAPIURL,
		KafkaTopic: defaultKafkaTopic,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
