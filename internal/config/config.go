package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Assets   AssetsConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// AssetsConfig selects where uploaded product images live.
// Backend is either "local" or "s3".
type AssetsConfig struct {
	Backend     string
	LocalDir    string
	BaseURL     string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

type LimitsConfig struct {
	RateLimitPerMinute int
	CacheTTLSeconds    int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("ASSETS_BACKEND", "local")
	viper.SetDefault("ASSETS_LOCAL_DIR", "assets/products")
	viper.SetDefault("ASSETS_BASE_URL", "http://localhost:8080/assets/products")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("CACHE_TTL_SECONDS", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Assets: AssetsConfig{
			Backend:     viper.GetString("ASSETS_BACKEND"),
			LocalDir:    viper.GetString("ASSETS_LOCAL_DIR"),
			BaseURL:     viper.GetString("ASSETS_BASE_URL"),
			S3Bucket:    viper.GetString("ASSETS_S3_BUCKET"),
			S3Region:    viper.GetString("ASSETS_S3_REGION"),
			S3Endpoint:  viper.GetString("ASSETS_S3_ENDPOINT"),
			S3AccessKey: viper.GetString("ASSETS_S3_ACCESS_KEY"),
			S3SecretKey: viper.GetString("ASSETS_S3_SECRET_KEY"),
		},
		Limits: LimitsConfig{
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			CacheTTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
		},
	}
}
