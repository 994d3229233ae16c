package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "biocommander.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the embedded sqlite backend.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// PostgresConfig holds settings for the postgres backend.
type PostgresConfig struct {
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
	BatchSize     int           `json:"batchSize" mapstructure:"batchSize"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	Memory   MemoryConfig   `json:"memory" mapstructure:"memory"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// OTelConfig holds OpenTelemetry export settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the influx server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// StreamingConfig holds settings for the websocket spectator stream.
type StreamingConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	URL            string        `json:"url" mapstructure:"url"`
	Secret         string        `json:"secret" mapstructure:"secret"`
	ReconnectDelay time.Duration `json:"reconnectDelay" mapstructure:"reconnectDelay"`
}

// GameConfig holds match hosting settings.
type GameConfig struct {
	ScenarioFile     string `json:"scenarioFile" mapstructure:"scenarioFile"`
	DefaultScenario  string `json:"defaultScenario" mapstructure:"defaultScenario"`
	TurnTimeLimit    uint64 `json:"turnTimeLimit" mapstructure:"turnTimeLimit"`
	ActionBufferSize int    `json:"actionBufferSize" mapstructure:"actionBufferSize"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.upload", false)
	viper.SetDefault("api.tag", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "biocommander")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "biocommander")
	viper.SetDefault("influx.bucket", "matches")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./matches")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./biocommander.db")
	viper.SetDefault("storage.postgres.flushInterval", "2s")
	viper.SetDefault("storage.postgres.batchSize", 500)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "biocommander")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("streaming.enabled", false)
	viper.SetDefault("streaming.url", "")
	viper.SetDefault("streaming.secret", "")
	viper.SetDefault("streaming.reconnectDelay", "5s")

	viper.SetDefault("game.scenarioFile", "")
	viper.SetDefault("game.defaultScenario", "default")
	viper.SetDefault("game.turnTimeLimit", 300)
	viper.SetDefault("game.actionBufferSize", 1000)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
// Environment variables prefixed with BIOCOMMANDER_ override file values,
// with nested keys joined by underscores (BIOCOMMANDER_STORAGE_TYPE).
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("BIOCOMMANDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Flags returns the command line flags understood by the host.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("biocommander", pflag.ContinueOnError)
	fs.String("config", ".", "directory containing "+FileName)
	fs.String("logLevel", "", "log level (debug, info, warn, error)")
	fs.String("storage", "", "storage backend (memory, sqlite, postgres)")
	return fs
}

// BindFlags binds parsed flags over file and env values. Unset flags are
// left alone so they do not mask the config file.
func BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"logLevel": "logLevel",
		"storage":  "storage.type",
	}
	for flag, key := range bindings {
		f := fs.Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		Postgres: PostgresConfig{
			FlushInterval: viper.GetDuration("storage.postgres.flushInterval"),
			BatchSize:     viper.GetInt("storage.postgres.batchSize"),
		},
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetStreamingConfig returns the streaming section.
func GetStreamingConfig() StreamingConfig {
	return StreamingConfig{
		Enabled:        viper.GetBool("streaming.enabled"),
		URL:            viper.GetString("streaming.url"),
		Secret:         viper.GetString("streaming.secret"),
		ReconnectDelay: viper.GetDuration("streaming.reconnectDelay"),
	}
}

// GetGameConfig returns the game section.
func GetGameConfig() GameConfig {
	return GameConfig{
		ScenarioFile:     viper.GetString("game.scenarioFile"),
		DefaultScenario:  viper.GetString("game.defaultScenario"),
		TurnTimeLimit:    viper.GetUint64("game.turnTimeLimit"),
		ActionBufferSize: viper.GetInt("game.actionBufferSize"),
	}
}
