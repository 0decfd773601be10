package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		Username        string        `mapstructure:"username"`
		Password        string        `mapstructure:"password"`
		Database        string        `mapstructure:"database"`
		SSLMode         string        `mapstructure:"sslmode"`
		MaxConnections  int           `mapstructure:"max_connections"`
		MaxIdleConns    int           `mapstructure:"max_idle_connections"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	} `mapstructure:"database"`

	API struct {
		Port    int    `mapstructure:"port"`
		TLSCert string `mapstructure:"tls_cert"`
		TLSKey  string `mapstructure:"tls_key"`
	} `mapstructure:"api"`

	Auth struct {
		JWTSecret         string        `mapstructure:"jwt_secret"`
		TokenExpiry       time.Duration `mapstructure:"token_expiry"`
		AdminUsername     string        `mapstructure:"admin_username"`
		AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	} `mapstructure:"auth"`

	Atlantis struct {
		URL        string `mapstructure:"url"`
		Token      string `mapstructure:"token"`
		Repository string `mapstructure:"repository"`
		Ref        string `mapstructure:"ref"`
		Type       string `mapstructure:"type"`
		Workspace  string `mapstructure:"workspace"`
		Directory  string `mapstructure:"directory"`
		Retries    int    `mapstructure:"retries"`
	} `mapstructure:"atlantis"`

	Redis struct {
		Addr       string        `mapstructure:"addr"`
		Password   string        `mapstructure:"password"`
		DB         int           `mapstructure:"db"`
		CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
	} `mapstructure:"redis"`

	VSphere struct {
		URL      string `mapstructure:"url"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Insecure bool   `mapstructure:"insecure"`
	} `mapstructure:"vsphere"`

	Webhook struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"webhook"`

	Configs struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"configs"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func Load() (*Config, error) {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "ssb")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.conn_max_lifetime", "1h")
	viper.SetDefault("database.conn_max_idle_time", "10m")
	viper.SetDefault("api.port", 8080)
	// JWT secret MUST be explicitly configured - no insecure default
	if os.Getenv("SSB_AUTH_JWT_SECRET") == "" {
		log.Println("WARNING: JWT secret not configured. Set SSB_AUTH_JWT_SECRET environment variable.")
		viper.SetDefault("auth.jwt_secret", "development-secret-change-in-production")
	}
	viper.SetDefault("auth.token_expiry", "24h")
	viper.SetDefault("auth.admin_username", "admin")
	viper.SetDefault("atlantis.url", "http://localhost:4141")
	viper.SetDefault("atlantis.type", "Gitlab")
	viper.SetDefault("atlantis.ref", "master")
	viper.SetDefault("atlantis.workspace", "default")
	viper.SetDefault("atlantis.directory", ".")
	viper.SetDefault("atlantis.retries", 3)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.catalog_ttl", "5m")
	viper.SetDefault("configs.dir", "configs")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetEnvPrefix("SSB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/ssb/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
