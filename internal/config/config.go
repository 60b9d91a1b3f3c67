// Package config loads server configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Cards    CardsConfig    `mapstructure:"cards"`
	Replay   ReplayConfig   `mapstructure:"replay"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AllowInject enables the test-only state injection endpoint. Never
	// enable it on a public deployment.
	AllowInject bool `mapstructure:"allow_inject"`
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// StorageConfig selects the game-document store.
type StorageConfig struct {
	// Driver is one of "postgres", "file", "memory".
	Driver string `mapstructure:"driver"`
	// Dir is the document directory for the file driver.
	Dir string `mapstructure:"dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig carries the scoring policy. The engine does not invent scoring
// values; they come from here.
type GameConfig struct {
	WinningPoints     int   `mapstructure:"winning_points"`
	MaxRounds         int   `mapstructure:"max_rounds"`
	RoundPoints       []int `mapstructure:"round_points"`
	ComboBonus        int   `mapstructure:"combo_bonus"`
	ReplenishHandSize int   `mapstructure:"replenish_hand_size"`
	RedrawLimit       int   `mapstructure:"redraw_limit"`
}

// CardsConfig points at the card data file; empty means the embedded set.
type CardsConfig struct {
	Path string `mapstructure:"path"`
}

// ReplayConfig controls the per-action snapshot recorder.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Load reads the configuration file at path, applying defaults and
// REVREB_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REVREB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allow_inject", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "revreb")
	v.SetDefault("database.name", "revreb")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dir", "data/games")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.winning_points", 50)
	v.SetDefault("game.max_rounds", 4)
	v.SetDefault("game.round_points", []int{10, 10, 15, 20})
	v.SetDefault("game.combo_bonus", 20)
	v.SetDefault("game.replenish_hand_size", 6)
	v.SetDefault("game.redraw_limit", 1)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "data/replays")
}
