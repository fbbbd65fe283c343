package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	// HTTP server
	ListenAddr string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// External catalog (ytmusic-compatible proxy)
	CatalogAPIURL  string
	CatalogTimeout time.Duration

	// Media layout
	MediaRoot string // root of the media library tree; audio, covers and nfo sidecars live under MediaRoot/music
	TempDir   string // scratch directory for in-flight downloads

	// Downloader
	YtdlpPath        string
	FFmpegPath       string
	FragmentRetries  int
	DownloadRetries  int
	DownloadDelay    time.Duration // pause between successive audio downloads
	ChannelURLPrefix string        // prepended to bare channel ids when resolving profile pictures

	// Image fetching
	ImageTimeout time.Duration

	// Auth
	JWTSecret string

	// MinIO archive mirror (optional)
	MinioEnabled   bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as seconds or returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	mediaRoot := getEnv("MEDIA_ROOT", "media")

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "masta"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CatalogAPIURL:  getEnv("CATALOG_API_URL", "http://localhost:8000"),
		CatalogTimeout: getEnvDuration("CATALOG_TIMEOUT", 30*time.Second),

		MediaRoot: mediaRoot,
		TempDir:   getEnv("TEMP_DIR", filepath.Join(os.TempDir(), "masta")),

		YtdlpPath:        getEnv("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		FragmentRetries:  getEnvInt("FRAGMENT_RETRIES", 10),
		DownloadRetries:  getEnvInt("DOWNLOAD_RETRIES", 10),
		DownloadDelay:    getEnvDuration("DOWNLOAD_DELAY", 3*time.Second),
		ChannelURLPrefix: getEnv("CHANNEL_URL_PREFIX", "https://www.youtube.com/channel/"),

		ImageTimeout: getEnvDuration("IMAGE_TIMEOUT", 10*time.Second),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),

		MinioEnabled:   getEnvBool("MINIO_ENABLED", false),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "masta-audio"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
