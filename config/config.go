package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Mongo configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation session lifetimes, in seconds.
	SessionTTL     int `mapstructure:"SESSION_TTL"`
	SessionHardCap int `mapstructure:"SESSION_HARD_CAP"`

	// Popularity analysis.
	PopularityLookbackDays int      `mapstructure:"POPULARITY_LOOKBACK_DAYS"`
	PopularityCacheTTL     int      `mapstructure:"POPULARITY_CACHE_TTL"`
	WarmCacheSalons        []string `mapstructure:"WARM_CACHE_SALONS"`

	// Messaging defaults.
	DefaultLanguage     string `mapstructure:"DEFAULT_LANGUAGE"`
	DefaultBusinessType string `mapstructure:"DEFAULT_BUSINESS_TYPE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "salonbot")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SESSION_TTL", 1800)
	viper.SetDefault("SESSION_HARD_CAP", 3600)
	viper.SetDefault("POPULARITY_LOOKBACK_DAYS", 90)
	viper.SetDefault("POPULARITY_CACHE_TTL", 3600)
	viper.SetDefault("WARM_CACHE_SALONS", []string{})
	viper.SetDefault("DEFAULT_LANGUAGE", "en")
	viper.SetDefault("DEFAULT_BUSINESS_TYPE", "beauty_salon")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// GetEnv returns the application environment.
func GetEnv() string {
	return AppConfig.Env
}

// IsProduction checks if the environment is production.
func IsProduction() bool {
	return GetEnv() == "production"
}
