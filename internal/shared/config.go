package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFile is read before the environment, without overriding it.
const EnvFile = "config/config.env"

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // mysql | memory
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	JWTSecret string

	GeocoderProvider string // mapquest | offline
	GeocoderKey      string
	GeocoderBase     string
	GeocoderRPS      int
	GeobedDataDir    string
	GeobedCacheDir   string

	PhotoStore       string // disk | cloudinary
	UploadPath       string
	MaxUpload        int64
	CloudinaryURL    string
	CloudinaryFolder string

	SeedDataDir string
	SeedWorkers int

	warnings []string
}

// Load reads the configuration. Problems that do not stop startup are
// collected for the caller to log once its logger is set up.
func Load() Config {
	var warnings []string
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, EnvFile+" not loaded: "+err.Error())
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", ""),
		HTTPAddr:    env("HTTP_ADDR", ":5000"),
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver: env("STORE_DRIVER", "mysql"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotelbook?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		JWTSecret: env("JWT_SECRET", ""),

		GeocoderProvider: env("GEOCODER_PROVIDER", "mapquest"),
		GeocoderKey:      env("GEOCODER_API_KEY", ""),
		GeocoderBase:     env("GEOCODER_BASE_URL", "https://www.mapquestapi.com"),
		GeocoderRPS:      atoi("GEOCODER_RPS", 5),
		GeobedDataDir:    env("GEOBED_DATA_DIR", "./geobed-data"),
		GeobedCacheDir:   env("GEOBED_CACHE_DIR", "./geobed-cache"),

		PhotoStore:       env("PHOTO_STORE", "disk"),
		UploadPath:       env("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxUpload:        int64(atoi("MAX_FILE_UPLOAD", 1000000)),
		CloudinaryURL:    env("CLOUDINARY_URL", ""),
		CloudinaryFolder: env("CLOUDINARY_FOLDER", "hotelbook"),

		SeedDataDir: env("SEED_DATA_DIR", "./seed"),
		SeedWorkers: atoi("SEED_WORKERS", 4),
	}
	if c.JWTSecret == "" {
		warnings = append(warnings, "JWT_SECRET is empty; every authenticated route will reject requests")
	}
	if c.GeocoderProvider == "mapquest" && c.GeocoderKey == "" {
		warnings = append(warnings, "GEOCODER_API_KEY is empty")
	}
	c.warnings = warnings
	return c
}

func (c Config) Warnings() []string { return c.warnings }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
