// internal/config/config.go
package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	View     ViewConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConcurrent int64
}

type AppConfig struct {
	UploadDir string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	RecordsTTLSeconds int
	FillLockSeconds   int
}

// StorageConfig points at the S3-compatible bucket that holds uploaded
// spreadsheets.
type StorageConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	Bucket            string
	UseSSL            bool
	PresignTTLSeconds int
}

type DriveConfig struct {
	CredentialsFile string
}

type ViewConfig struct {
	CurrencyLocale    string
	CurrencySymbol    string
	SessionTTLSeconds int
}

// SessionTTL is the idle time after which a view session is discarded.
func (c ViewConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "workshop")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONCURRENT", 10)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RECORDS_TTL_SECONDS", 60)
		viper.SetDefault("CACHE_FILL_LOCK_SECONDS", 10)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "uploads")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PRESIGN_TTL_SECONDS", 900)
		viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
		viper.SetDefault("VIEW_CURRENCY_LOCALE", "en")
		viper.SetDefault("VIEW_CURRENCY_SYMBOL", "")
		viper.SetDefault("VIEW_SESSION_TTL_SECONDS", 1800)

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:          viper.GetString("DB_HOST"),
				Port:          viper.GetString("DB_PORT"),
				User:          viper.GetString("DB_USER"),
				Password:      viper.GetString("DB_PASSWORD"),
				DBName:        viper.GetString("DB_NAME"),
				SSLMode:       viper.GetString("DB_SSLMODE"),
				MaxConcurrent: viper.GetInt64("DB_MAX_CONCURRENT"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				RecordsTTLSeconds: viper.GetInt("CACHE_RECORDS_TTL_SECONDS"),
				FillLockSeconds:   viper.GetInt("CACHE_FILL_LOCK_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:          viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:         viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:         viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:            viper.GetString("STORAGE_BUCKET"),
				UseSSL:            viper.GetBool("STORAGE_USE_SSL"),
				PresignTTLSeconds: viper.GetInt("STORAGE_PRESIGN_TTL_SECONDS"),
			},
			Drive: DriveConfig{
				CredentialsFile: viper.GetString("GOOGLE_CREDENTIALS_FILE"),
			},
			View: ViewConfig{
				CurrencyLocale:    viper.GetString("VIEW_CURRENCY_LOCALE"),
				CurrencySymbol:    viper.GetString("VIEW_CURRENCY_SYMBOL"),
				SessionTTLSeconds: viper.GetInt("VIEW_SESSION_TTL_SECONDS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
}
