package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	DBConnStr       string
	DBRunMigrations bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotificationQueueName  string
	DeliveryLockPrefix     string
	DeliveryLockTTLSeconds int
	DeliveryMaxAttempts    int
	DeliveryWebhookURL     string
	DeliveryWebhookSecret  string
	DeliverySweepSeconds   int
	EmbeddedWorker         bool

	LoginRatePerMinute int
	LoginRateBurst     int

	LogLevel   string
	BcryptCost int
}

var AppConfig *Config

// Load reads .env (if any) and the environment into AppConfig.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current environment without touching AppConfig.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:         getEnv("API_PORT", "8080"),
		JWTKey:          []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:          time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "user"),
		DBPassword:      getEnv("DB_PASSWORD", "password"),
		DBName:          getEnv("DB_NAME", "tle_zone_dashboard"),
		DBSslMode:       getEnv("DB_SSLMODE", "disable"),
		DBRunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),

		NotificationQueueName:  getEnv("NOTIFICATION_QUEUE_NAME", "notification_delivery_queue"),
		DeliveryLockPrefix:     getEnv("DELIVERY_LOCK_PREFIX", "notification_delivery_lock"),
		DeliveryLockTTLSeconds: getEnvAsInt("DELIVERY_LOCK_TTL_SECONDS", 60),
		DeliveryMaxAttempts:    getEnvAsInt("DELIVERY_MAX_ATTEMPTS", 5),
		DeliveryWebhookURL:     getEnv("DELIVERY_WEBHOOK_URL", "http://localhost:9090/notifications"),
		DeliveryWebhookSecret:  getEnv("DELIVERY_WEBHOOK_SECRET", ""),
		DeliverySweepSeconds:   getEnvAsInt("DELIVERY_SWEEP_SECONDS", 60),
		EmbeddedWorker:         getEnvAsBool("EMBEDDED_WORKER", true),

		LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
		LoginRateBurst:     getEnvAsInt("LOGIN_RATE_BURST", 5),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
	}

	if cfg.LoginRatePerMinute <= 0 {
		cfg.LoginRatePerMinute = 10
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
