package config

import (
	"errors"  // Validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // List parsing
	"time"    // Cache TTL

	"github.com/joho/godotenv" // For loading .env files
)

// Supported store drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort    string        // Application port
	DBDriver   string        // mysql or sqlite
	DBUser     string        // Database user
	DBPassword string        // Database password
	DBHost     string        // Database host
	DBPort     string        // Database port
	DBName     string        // Database name
	SQLitePath string        // SQLite file, used when DBDriver is sqlite
	JWTSecret  string        // JWT secret key
	RedisAddr  string        // Redis server address, empty disables caching
	RedisPass  string        // Redis password
	RedisDB    int           // Redis database number
	CacheTTL   time.Duration // Lifetime of cached responses
	IsProd     bool          // Is production environment
	LogLevel   string        // logrus level name
	CORSOrigin []string      // Origins allowed to call the API, "*" for any
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttlSeconds, err := strconv.Atoi(os.Getenv("CACHE_TTL_SECONDS"))
	if err != nil || ttlSeconds <= 0 {
		ttlSeconds = 60 // Default cache lifetime
	}
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),              // Application port
		DBDriver:   getEnv("DB_DRIVER", DriverMySQL),        // Store driver
		DBUser:     os.Getenv("DB_USER"),                    // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),                // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),          // Database host
		DBPort:     getEnv("DB_PORT", "3306"),               // Database port
		DBName:     os.Getenv("DB_NAME"),                    // Database name
		SQLitePath: getEnv("SQLITE_PATH", "finance.db"),     // SQLite file
		JWTSecret:  os.Getenv("JWT_SECRET"),                 // JWT secret key
		RedisAddr:  os.Getenv("REDIS_ADDR"),                 // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),                 // Redis password
		RedisDB:    redisDB,                                 // Redis database number
		CacheTTL:   time.Duration(ttlSeconds) * time.Second, // Cache lifetime
		IsProd:     os.Getenv("IS_PROD") == "true",          // Is production environment
		LogLevel:   getEnv("LOG_LEVEL", "info"),             // Log level
		CORSOrigin: splitList(getEnv("CORS_ORIGINS", "*")),  // Allowed browser origins
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.DBName == "" {
			return errors.New("DB_NAME is not set")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is not set")
		}
	default:
		return errors.New("DB_DRIVER must be mysql or sqlite")
	}
	return nil
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&loc=UTC"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma separated value, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
