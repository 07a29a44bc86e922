package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/subosito/gotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	// App
	AppEnv        string
	Port          string
	LogLevel      string
	LogDir        string
	DisplayLocale string
	CORSOrigins   []string

	// Database
	DBDriver   string
	DBUser     string
	DBPass     string
	DBHost     string
	DBPort     string
	DBName     string
	FullDSN    string
	SQLitePath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := &Config{
		AppEnv:        strings.ToLower(getEnv("APP_ENV", "development")),
		Port:          getEnv("APP_PORT", "8080"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogDir:        getEnv("LOG_DIR", ""),
		DisplayLocale: getEnv("DISPLAY_LOCALE", "pt-BR"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBUser:     getEnv("DB_USER", ""),
		DBPass:     getEnv("DB_PASS", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "budget_tracker"),
		FullDSN:    getEnv("FULL_DSN", ""),
		SQLitePath: getEnv("SQLITE_PATH", "./data/budget.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
	}

	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warning, error", c.LogLevel))
	}

	switch c.DBDriver {
	case DriverMySQL:
		if c.FullDSN == "" && (c.DBUser == "" || c.DBPass == "" || c.DBHost == "" || c.DBPort == "") {
			problems = append(problems, "mysql driver requires FULL_DSN or DB_USER, DB_PASS, DB_HOST and DB_PORT")
		}
		if c.FullDSN != "" {
			if _, err := mysql.ParseDSN(c.FullDSN); err != nil {
				problems = append(problems, fmt.Sprintf("invalid FULL_DSN: %v", err))
			}
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite driver requires SQLITE_PATH")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be one of mysql, sqlite, memory", c.DBDriver))
	}

	if c.DBDriver != DriverMemory && len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MySQLDSN builds the DSN for the application database. parseTime is always
// on, a FULL_DSN without it gets it added.
func (c *Config) MySQLDSN() string {
	if c.FullDSN != "" {
		return withParseTime(c.FullDSN)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// withParseTime returns dsn untouched when it does not parse; Validate reports that.
func withParseTime(dsn string) string {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	parsed.ParseTime = true
	return parsed.FormatDSN()
}

// MySQLAdminDSN points at the server without selecting a database.
func (c *Config) MySQLAdminDSN() string {
	if c.FullDSN != "" {
		idx := strings.LastIndex(c.FullDSN, "/")
		if idx < 0 {
			return c.FullDSN
		}
		return c.FullDSN[:idx+1]
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
