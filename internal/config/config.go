package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Storage   StorageConfig
	Drive     DriveConfig
	LLM       LLMConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	InputPath        string
	OutputDir        string
	IntermediateDir  string
	DownloadDir      string
	LogLevel         string
	LogJSON          bool
	ExpiryWindowDays int
	Category         string
	Workers          int
}

// StorageConfig points at an S3-compatible bucket holding ledgers and outputs.
type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	UseSSL       bool
	InputPrefix  string
	OutputPrefix string
}

// Enabled reports whether enough is set to build a client.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

// Enabled reports whether a Drive folder can be read.
func (d DriveConfig) Enabled() bool {
	return d.CredentialsJSON != "" && d.FolderID != ""
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type SchedulerConfig struct {
	Enabled bool
	Spec    string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration once from .env (if present) and the environment.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)
		v.AutomaticEnv()

		instance = FromViper(v)

		ensureDir(instance.App.OutputDir)
	})

	return instance
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("APP_INPUT_PATH", "./data/inventory.csv")
	v.SetDefault("APP_OUTPUT_DIR", "./data/output")
	v.SetDefault("APP_INTERMEDIATE_DIR", "./data/intermediate")
	v.SetDefault("APP_DOWNLOAD_DIR", "./data/downloads")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("CLEARANCE_EXPIRY_WINDOW_DAYS", 10)
	v.SetDefault("CLEARANCE_CATEGORY", "All")
	v.SetDefault("CLEARANCE_WORKERS", 4)

	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_INPUT_PREFIX", "ledgers/")
	v.SetDefault("S3_OUTPUT_PREFIX", "clearance/")

	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FOLDER_ID", "")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_MAX_TOKENS", 300)
	v.SetDefault("OPENAI_TEMPERATURE", 0.0)
	v.SetDefault("OPENAI_TIMEOUT", "60s")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_SPEC", "0 6 * * *")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		App: AppConfig{
			InputPath:        v.GetString("APP_INPUT_PATH"),
			OutputDir:        v.GetString("APP_OUTPUT_DIR"),
			IntermediateDir:  v.GetString("APP_INTERMEDIATE_DIR"),
			DownloadDir:      v.GetString("APP_DOWNLOAD_DIR"),
			LogLevel:         v.GetString("LOG_LEVEL"),
			LogJSON:          v.GetBool("LOG_JSON"),
			ExpiryWindowDays: v.GetInt("CLEARANCE_EXPIRY_WINDOW_DAYS"),
			Category:         v.GetString("CLEARANCE_CATEGORY"),
			Workers:          v.GetInt("CLEARANCE_WORKERS"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("S3_ENDPOINT"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
			Bucket:       v.GetString("S3_BUCKET"),
			Region:       v.GetString("S3_REGION"),
			UseSSL:       v.GetBool("S3_USE_SSL"),
			InputPrefix:  v.GetString("S3_INPUT_PREFIX"),
			OutputPrefix: v.GetString("S3_OUTPUT_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
		},
		LLM: LLMConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			Model:       v.GetString("OPENAI_MODEL"),
			MaxTokens:   v.GetInt("OPENAI_MAX_TOKENS"),
			Temperature: v.GetFloat64("OPENAI_TEMPERATURE"),
			Timeout:     v.GetDuration("OPENAI_TIMEOUT"),
		},
		Scheduler: SchedulerConfig{
			Enabled: v.GetBool("SCHEDULER_ENABLED"),
			Spec:    v.GetString("SCHEDULER_SPEC"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create directory")
		}
	}
}
