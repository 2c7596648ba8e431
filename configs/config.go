package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	DatabaseURL      string
	AutoMigrate      bool
	DBConnectTimeout time.Duration

	UploadBackend string
	UploadDir     string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3UseSSL      bool

	RedisAddr        string
	UploadRateLimit  int64
	UploadRateWindow time.Duration

	KafkaBootstrapServers string
	KafkaTopic            string

	JWTSecret string
}

// LoadConfig reads .env.local and .env when present, then the process
// environment. Variables already set in the environment win.
func LoadConfig() *Config {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return &Config{
		AppPort:          getEnv("APP_PORT", ":3000"),
		DatabaseURL:      getEnv("DATABASE_URL", os.Getenv("MONGODB_URI")),
		AutoMigrate:      getBool("AUTO_MIGRATE", false),
		DBConnectTimeout: getDuration("DB_CONNECT_TIMEOUT", 30*time.Second),

		UploadBackend: strings.ToLower(getEnv("UPLOAD_BACKEND", "disk")),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		S3Endpoint:    getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", "minio"),
		S3SecretKey:   getEnv("S3_SECRET_KEY", "minio123"),
		S3Bucket:      getEnv("S3_BUCKET", "uploads"),
		S3UseSSL:      getBool("S3_USE_SSL", false),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		UploadRateLimit:  int64(getInt("UPLOAD_RATE_LIMIT", 30)),
		UploadRateWindow: getDuration("UPLOAD_RATE_WINDOW", time.Minute),

		KafkaBootstrapServers: os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "posts.events"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("AppPort=%s, UploadBackend=%s, UploadDir=%s, S3Endpoint=%s, S3Bucket=%s, Kafka=%t, Redis=%t, Auth=%t",
		c.AppPort, c.UploadBackend, c.UploadDir, c.S3Endpoint, c.S3Bucket,
		c.KafkaBootstrapServers != "", c.RedisAddr != "", c.JWTSecret != "")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
