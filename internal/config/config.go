package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and passed to every component that needs it.
type Config struct {
	Server   ServerConfig
	Database DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Ledger   LedgerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ApplySchema     bool
}

// DSN renders the lib/pq keyword/value connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey string
}

// LedgerConfig tunes account creation and counterparty resolution.
type LedgerConfig struct {
	AccountNumberLength  int
	AccountNumberPrefix  string
	AccountNumberCharset string
	MaxCreateAttempts    int
	PrimaryAccountPrefix string
	DefaultCurrency      string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

var envBindings = map[string]string{
	"server.port": "PORT",

	"database.host":         "DATABASE_HOST",
	"database.port":         "DATABASE_PORT",
	"database.user":         "DATABASE_USER",
	"database.password":     "DATABASE_PASSWORD",
	"database.name":         "DATABASE_NAME",
	"database.ssl_mode":     "DATABASE_SSL_MODE",
	"database.apply_schema": "DATABASE_APPLY_SCHEMA",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key": "JWT_SECRET_KEY",

	"ledger.account_number_length":  "LEDGER_ACCOUNT_NUMBER_LENGTH",
	"ledger.account_number_prefix":  "LEDGER_ACCOUNT_NUMBER_PREFIX",
	"ledger.account_number_charset": "LEDGER_ACCOUNT_NUMBER_CHARSET",
	"ledger.max_create_attempts":    "LEDGER_MAX_CREATE_ATTEMPTS",
	"ledger.primary_account_prefix": "LEDGER_PRIMARY_ACCOUNT_PREFIX",
	"ledger.default_currency":       "LEDGER_DEFAULT_CURRENCY",

	"log.level":  "LOG_LEVEL",
	"log.pretty": "LOG_PRETTY",
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "ledger")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Minute*5)
	v.SetDefault("database.apply_schema", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.idempotency_ttl", 24*time.Hour)

	v.SetDefault("ledger.account_number_length", 10)
	v.SetDefault("ledger.account_number_prefix", "100")
	v.SetDefault("ledger.account_number_charset", "0123456789")
	v.SetDefault("ledger.max_create_attempts", 5)
	v.SetDefault("ledger.primary_account_prefix", "100")
	v.SetDefault("ledger.default_currency", "USD")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads an optional config file plus environment overrides into a Config.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper copies values out of v without touching global viper state.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DBConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ApplySchema:     v.GetBool("database.apply_schema"),
		},
		Redis: RedisConfig{
			Host:           v.GetString("redis.host"),
			Port:           v.GetString("redis.port"),
			Password:       v.GetString("redis.password"),
			DB:             v.GetInt("redis.db"),
			IdempotencyTTL: v.GetDuration("redis.idempotency_ttl"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
		},
		Ledger: LedgerConfig{
			AccountNumberLength:  v.GetInt("ledger.account_number_length"),
			AccountNumberPrefix:  v.GetString("ledger.account_number_prefix"),
			AccountNumberCharset: v.GetString("ledger.account_number_charset"),
			MaxCreateAttempts:    v.GetInt("ledger.max_create_attempts"),
			PrimaryAccountPrefix: v.GetString("ledger.primary_account_prefix"),
			DefaultCurrency:      v.GetString("ledger.default_currency"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
	}
}

// Validate rejects settings the ledger cannot run with.
func (c *Config) Validate() error {
	l := c.Ledger
	if l.AccountNumberLength <= len(l.AccountNumberPrefix) {
		return fmt.Errorf("ledger.account_number_length (%d) must exceed prefix length (%d)",
			l.AccountNumberLength, len(l.AccountNumberPrefix))
	}
	if l.AccountNumberCharset == "" {
		return errors.New("ledger.account_number_charset must not be empty")
	}
	if l.MaxCreateAttempts < 1 {
		return errors.New("ledger.max_create_attempts must be at least 1")
	}
	if c.JWT.SecretKey == "" {
		return errors.New("jwt.secret_key is required")
	}
	return nil
}
