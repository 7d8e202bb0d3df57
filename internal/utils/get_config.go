package utils

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppURL      string `yaml:"APP_URL" envconfig:"APP_URL"`
	AppPort     string `yaml:"APP_PORT" envconfig:"APP_PORT"`
	AppTimezone string `yaml:"APP_TIMEZONE" envconfig:"APP_TIMEZONE"`
	LogLevel    string `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL"`
	LogFile     string `yaml:"LOG_FILE" envconfig:"LOG_FILE"`

	// Database configuration
	DBUser     string `yaml:"DB_USER" envconfig:"DB_USER"`
	DBName     string `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST" envconfig:"DB_HOST"`

	JWTSecret string `yaml:"JWT_SECRET" envconfig:"JWT_SECRET"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST" envconfig:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT" envconfig:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME" envconfig:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL" envconfig:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD" envconfig:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET" envconfig:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION" envconfig:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY" envconfig:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY" envconfig:"AWS_SECRET_KEY"`

	// Product catalog (barcode lookup)
	CatalogURL            string `yaml:"CATALOG_URL" envconfig:"CATALOG_URL"`
	CatalogTimeoutSeconds string `yaml:"CATALOG_TIMEOUT_SECONDS" envconfig:"CATALOG_TIMEOUT_SECONDS"`

	// Notification dispatcher
	NotificationPollSeconds string `yaml:"NOTIFICATION_POLL_SECONDS" envconfig:"NOTIFICATION_POLL_SECONDS"`
	NotificationSender      string `yaml:"NOTIFICATION_SENDER" envconfig:"NOTIFICATION_SENDER"`
}

const envPrefix = "LIFECYCLE"

var (
	config Config
	mu     sync.RWMutex
)

func LoadConfig() {
	LoadConfigFrom("config.yaml")
}

// LoadConfigFrom reads the YAML file at path and then applies LIFECYCLE_*
// environment overrides. A missing file is not fatal; the environment may
// carry everything.
func LoadConfigFrom(path string) {
	var cfg Config

	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else if err := yaml.Unmarshal(file, &cfg); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		log.Printf("Error reading environment overrides: %s\n", err)
	}

	SetConfig(cfg)
}

// SetConfig replaces the loaded configuration. Tests use it directly.
func SetConfig(cfg Config) {
	mu.Lock()
	config = cfg
	mu.Unlock()
}

func GetConfig(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	switch key {
	case "APP_URL":
		return config.AppURL
	case "APP_PORT":
		return config.AppPort
	case "APP_TIMEZONE":
		return config.AppTimezone
	case "LOG_LEVEL":
		return config.LogLevel
	case "LOG_FILE":
		return config.LogFile
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "CATALOG_URL":
		return config.CatalogURL
	case "CATALOG_TIMEOUT_SECONDS":
		return config.CatalogTimeoutSeconds
	case "NOTIFICATION_POLL_SECONDS":
		return config.NotificationPollSeconds
	case "NOTIFICATION_SENDER":
		return config.NotificationSender
	default:
		return ""
	}
}

func GetConfigOr(key, fallback string) string {
	if v := GetConfig(key); v != "" {
		return v
	}
	return fallback
}

func GetConfigSeconds(key string, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(GetConfig(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// Location is the zone used for calendar-day arithmetic and for the 09:00
// alert time. Unknown or empty names fall back to UTC.
func Location() *time.Location {
	name := GetConfig("APP_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown APP_TIMEZONE %q, using UTC\n", name)
		return time.UTC
	}
	return loc
}

// Now returns the current time in Location().
func Now() time.Time {
	return time.Now().In(Location())
}
