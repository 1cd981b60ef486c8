package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Membership MembershipConfig
	Logger     LoggerConfig
	Jaeger     JaegerConfig
	Sentry     SentryConfig
}

type ServerConfig struct {
	Port        string
	RunMode     string
	CorsOrigins string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DbName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	Db           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

type AuthConfig struct {
	Secret            string
	AccessTTLMinutes  int
	RefreshTTLDays    int
	ServiceTTLDefault time.Duration
}

type MembershipConfig struct {
	// RejoinLiftsBan controls whether a plain join by a banned identity
	// silently lifts the ban. When false (the default) a banned identity can
	// only return through an owner-driven unban.
	RejoinLiftsBan bool
}

type LoggerConfig struct {
	FilePath   string
	Encoding   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JaegerConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
}

type SentryConfig struct {
	Dsn   string
	Debug bool
}

func GetConfig() *Config {
	cfgPath := getConfigPath(os.Getenv("APP_ENV"))
	v, err := LoadConfig(cfgPath, "yml")
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.Port = envPort
	}
	if envSecret := os.Getenv("AUTH_SECRET"); envSecret != "" {
		cfg.Auth.Secret = envSecret
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())
	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Auth.AccessTTLMinutes <= 0 {
		return errors.New("auth.accessTTLMinutes must be positive")
	}
	if c.Auth.RefreshTTLDays <= 0 {
		return errors.New("auth.refreshTTLDays must be positive")
	}
	if c.Postgres.Host == "" {
		return errors.New("postgres.host is required")
	}
	if c.Postgres.Port == "" {
		return errors.New("postgres.port is required")
	}
	if c.Postgres.DbName == "" {
		return errors.New("postgres.dbName is required")
	}
	if c.Redis.Host == "" {
		return errors.New("redis.host is required")
	}
	if c.Redis.Port == "" {
		return errors.New("redis.port is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.RunMode == "debug" || c.Server.RunMode == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetPostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DbName,
		c.Postgres.SSLMode,
	)
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%s", c.Server.Port)
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLDays) * 24 * time.Hour
}
