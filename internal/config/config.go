// Package config loads the order desk configuration from YAML or TOML.
package config

import "time"

// Config is the root configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Channel  ChannelConfig  `yaml:"channel"`
	Store    StoreConfig    `yaml:"store"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds backend settings.
type APIConfig struct {
	BaseURL string `yaml:"base_url"` // HTTP API base; the socket URL is derived from it
	WSPath  string `yaml:"ws_path"`  // Monitoring socket path under base_url
}

// ChannelConfig holds live channel settings.
type ChannelConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StoreConfig selects where the order draft and token are kept.
type StoreConfig struct {
	Backend     string        `yaml:"backend"` // file, memory or postgres
	Dir         string        `yaml:"dir"`     // file backend only
	Key         string        `yaml:"key"`     // slot the draft lives in
	SaveTimeout time.Duration `yaml:"save_timeout"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	TokenKey string `yaml:"token_key"` // storage slot holding the token
	Token    string `yaml:"token"`     // fixed token, overrides the slot when set
}

// DatabaseConfig holds the Postgres connection for the postgres backend.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
	Table    string `yaml:"table"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}
