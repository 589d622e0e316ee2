package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort       string
	JWTSecret     string
	TokenTTLHours int
	// AdminSecret guards POST /users/make-admin. Empty disables elevation.
	AdminSecret    string
	AllowedOrigins []string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching and token revocation
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Uploads
	UploadDir       string
	UploadURLPrefix string
	UploadMaxMB     int
}

// fileConfig mirrors the grouped layout of config/config.yaml (or .json).
type fileConfig struct {
	App struct {
		AppPort        string   `yaml:"AppPort"`
		JWTSecret      string   `yaml:"JWTSecret"`
		TokenTTLHours  int      `yaml:"TokenTTLHours"`
		AdminSecret    string   `yaml:"AdminSecret"`
		AllowedOrigins []string `yaml:"AllowedOrigins"`
	} `yaml:"app"`
	Database struct {
		Driver      string `yaml:"Driver"`
		DatabaseURI string `yaml:"DatabaseURI"`
		DBHost      string `yaml:"DBHost"`
		DBPort      string `yaml:"DBPort"`
		DBUser      string `yaml:"DBUser"`
		DBPassword  string `yaml:"DBPassword"`
		DBName      string `yaml:"DBName"`
	} `yaml:"database"`
	Redis struct {
		Enabled       *bool  `yaml:"Enabled"`
		RedisHost     string `yaml:"RedisHost"`
		RedisPort     int    `yaml:"RedisPort"`
		RedisDB       int    `yaml:"RedisDB"`
		RedisPassword string `yaml:"RedisPassword"`
	} `yaml:"redis"`
	Log struct {
		Level      string `yaml:"Level"`
		Path       string `yaml:"Path"`
		GinMode    string `yaml:"GinMode"`
		GinPath    string `yaml:"GinPath"`
		MaxSizeMB  int    `yaml:"MaxSizeMB"`
		MaxBackups int    `yaml:"MaxBackups"`
		MaxAgeDays int    `yaml:"MaxAgeDays"`
		Compress   bool   `yaml:"Compress"`
	} `yaml:"log"`
	Uploads struct {
		Dir       string `yaml:"Dir"`
		URLPrefix string `yaml:"URLPrefix"`
		MaxMB     int    `yaml:"MaxMB"`
	} `yaml:"uploads"`
}

// DefaultPaths are probed in order when no explicit config path is given.
var DefaultPaths = []string{
	filepath.Join("config", "config.yaml"),
	filepath.Join("config", "config.json"),
}

// Load builds the application configuration. Precedence: config file -> defaults -> environment variable overrides.
// An empty path probes DefaultPaths; a missing file is not an error.
func Load(path string) (AppConfig, error) {
	cfg := AppConfig{RedisEnabled: true}

	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		found, err := loadFile(p, &cfg)
		if err != nil {
			return AppConfig{}, err
		}
		if found {
			break
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}

	if cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in config or environment variables")
	}
	return cfg, nil
}

// loadFile reads a YAML or JSON file into cfg if present. Returns an error only for unreadable or invalid content.
func loadFile(path string, out *AppConfig) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read config %s: %w", path, err)
	}

	// JSON is a subset of YAML, so one decoder serves both formats.
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.TokenTTLHours = fc.App.TokenTTLHours
	out.AdminSecret = fc.App.AdminSecret
	out.AllowedOrigins = fc.App.AllowedOrigins

	out.DBDriver = fc.Database.Driver
	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName

	if fc.Redis.Enabled != nil {
		out.RedisEnabled = *fc.Redis.Enabled
	}
	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.GinMode = fc.Log.GinMode
	out.GinPath = fc.Log.GinPath
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress

	out.UploadDir = fc.Uploads.Dir
	out.UploadURLPrefix = fc.Uploads.URLPrefix
	out.UploadMaxMB = fc.Uploads.MaxMB
	return true, nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5000"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 7 * 24
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "gamehouse"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadURLPrefix == "" {
		c.UploadURLPrefix = "/uploads"
	}
	if c.UploadMaxMB == 0 {
		c.UploadMaxMB = 10
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid integer value for %s: %w", key, err))
				return
			}
			*dst = i
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	str("APP_PORT", &c.AppPort)
	str("PORT", &c.AppPort)
	str("JWT_SECRET", &c.JWTSecret)
	num("TOKEN_TTL_HOURS", &c.TokenTTLHours)
	str("ADMIN_SECRET", &c.AdminSecret)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	str("DB_DRIVER", &c.DBDriver)
	str("DATABASE_URI", &c.DatabaseURI)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	flag("REDIS_ENABLED", &c.RedisEnabled)
	str("REDIS_HOST", &c.RedisHost)
	num("REDIS_PORT", &c.RedisPort)
	num("REDIS_DB", &c.RedisDB)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("GIN_MODE", &c.GinMode)
	str("GIN_PATH", &c.GinPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_PATH", &c.LogPath)
	num("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	num("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	num("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	flag("LOG_COMPRESS", &c.LogCompress)
	str("UPLOAD_DIR", &c.UploadDir)
	str("UPLOAD_URL_PREFIX", &c.UploadURLPrefix)
	num("UPLOAD_MAX_MB", &c.UploadMaxMB)

	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
