package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	AppPort string

	DBDriver    string // sqlite or postgres
	DatabaseDSN string

	BcryptCost    int
	SessionMaxAge time.Duration

	AvatarStorage string // local or s3
	AvatarDir     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	MetricsCacheTTL time.Duration

	RabbitMQURL string

	LogLevel string
}

// SetDefaults registers the default value of every configuration key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3333")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:dailydiet.db?_foreign_keys=on")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SESSION_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("AVATAR_STORAGE", "local")
	v.SetDefault("AVATAR_DIR", "./uploads")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("METRICS_CACHE_TTL", 5*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        v.GetString("DB_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		SessionMaxAge:   v.GetDuration("SESSION_MAX_AGE"),
		AvatarStorage:   v.GetString("AVATAR_STORAGE"),
		AvatarDir:       v.GetString("AVATAR_DIR"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Region:        v.GetString("S3_REGION"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     v.GetString("S3_SECRET_KEY"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		MetricsCacheTTL: v.GetDuration("METRICS_CACHE_TTL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}
}

// ConfigureLogger applies the configured level to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, falling back to info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
