package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DBPath  string
	LogDir  string
	TempDir string

	ModelName string
	CacheTTL  time.Duration

	CaptionTimeout    time.Duration
	DownloadTimeout   time.Duration
	TranscribeTimeout time.Duration

	PythonPath  string
	ScriptsPath string
	YTDLPPath   string
	FFmpegPath  string

	RateLimit         int
	RateLimitInterval time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}

	return &Config{
		ServerPort:      GetEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 15*time.Minute),
		IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DBPath:  GetEnv("DB_PATH", "./data/transcripts.db"),
		LogDir:  GetEnv("LOG_DIR", "./logs"),
		TempDir: GetEnv("TEMP_DIR", os.TempDir()),

		ModelName: GetEnv("WHISPER_MODEL", "small"),
		CacheTTL:  time.Duration(getEnvAsInt("CACHE_TTL", 3600)) * time.Second,

		CaptionTimeout:    getEnvAsDuration("CAPTION_TIMEOUT", 30*time.Second),
		DownloadTimeout:   getEnvAsDuration("DOWNLOAD_TIMEOUT", 120*time.Second),
		TranscribeTimeout: getEnvAsDuration("TRANSCRIBE_TIMEOUT", 10*time.Minute),

		PythonPath:  GetEnv("PYTHON_PATH", "python3"),
		ScriptsPath: GetEnv("SCRIPTS_PATH", "./scripts"),
		YTDLPPath:   GetEnv("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:  GetEnv("FFMPEG_PATH", "ffmpeg"),

		RateLimit:         getEnvAsInt("RATE_LIMIT", 5),
		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 1*time.Second),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.DBPath == "" {
		return errors.New("database path is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("cache TTL must be greater than 0")
	}
	if cfg.TranscribeTimeout <= 0 {
		return errors.New("transcribe timeout must be greater than 0")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than 0")
	}
	return nil
}
