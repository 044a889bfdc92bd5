package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"` // comma-separated IPs/CIDRs

	// MongoDB holds the vendor/service snapshot.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	VendorLimit  int    `mapstructure:"VENDOR_LIMIT"`

	// Vendor list cache in Redis; zero disables it.
	VendorCacheTTL time.Duration `mapstructure:"VENDOR_CACHE_TTL"`

	// Redis configuration.
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisConversationDB int    `mapstructure:"REDIS_CONVERSATION_DB"`

	// Conversation memory: "redis" or "memory".
	ConversationStore    string        `mapstructure:"CONVERSATION_STORE"`
	ConversationTTL      time.Duration `mapstructure:"CONVERSATION_TTL"`
	ConversationMaxTurns int           `mapstructure:"CONVERSATION_MAX_TURNS"`

	// Gemini.
	GeminiAPIKey      string `mapstructure:"GEMINI_API_KEY"`
	GeminiChatModel   string `mapstructure:"GEMINI_CHAT_MODEL"`
	GeminiSearchModel string `mapstructure:"GEMINI_SEARCH_MODEL"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "eventura")
	viper.SetDefault("VENDOR_LIMIT", 50)
	viper.SetDefault("VENDOR_CACHE_TTL", "5m")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONVERSATION_DB", 0)
	viper.SetDefault("CONVERSATION_STORE", "redis")
	viper.SetDefault("CONVERSATION_TTL", "24h")
	viper.SetDefault("CONVERSATION_MAX_TURNS", 100)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_CHAT_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("GEMINI_SEARCH_MODEL", "models/gemini-1.5-flash")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
