package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	CampaignName    string
	FrontendBaseURL string

	// Minimum invoice value for eligibility; also the divisor for the
	// chance count.
	MinInvoiceValue float64
	// Upper bound (inclusive) of the draw-number range.
	DrawNumberMax int64
	// How many times the generator re-samples before giving up.
	DrawNumberMaxAttempts int

	AuthJWTSecret    string
	AuthJWTExpiresIn string

	BcryptCost int

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit RateLimitConfig

	SalesAPIBaseURL  string
	SalesAPIUser     string
	SalesAPIPassword string

	Email EmailConfig

	Bootstrap BootstrapConfig
}

type RateLimitConfig struct {
	Enabled    bool
	LoginRate  float64
	LoginBurst int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type BootstrapConfig struct {
	EnsureDefaultAdmin bool
	AdminUsername      string
	AdminEmail         string
	AdminPassword      string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "promo"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		CampaignName:    getenv("CAMPAIGN_NAME", "promo"),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000"),

		MinInvoiceValue:       getenvFloat("CAMPAIGN_MIN_INVOICE_VALUE", 200),
		DrawNumberMax:         getenvInt64("CAMPAIGN_DRAW_NUMBER_MAX", 9999999),
		DrawNumberMaxAttempts: getenvInt("CAMPAIGN_DRAW_NUMBER_MAX_ATTEMPTS", 100),

		AuthJWTSecret:    strings.TrimSpace(getenv("JWT_SECRET", "")),
		AuthJWTExpiresIn: getenv("JWT_EXPIRES_IN", "1h"),

		BcryptCost: getenvInt("BCRYPT_COST", 10),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "promo"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		RateLimit: RateLimitConfig{
			Enabled:    getenvBool("RATE_LIMIT_ENABLED", false),
			LoginRate:  getenvFloat("RATE_LIMIT_LOGIN_RATE", 0.5),
			LoginBurst: getenvInt("RATE_LIMIT_LOGIN_BURST", 5),
		},

		SalesAPIBaseURL:  getenv("SALES_API_BASE_URL", ""),
		SalesAPIUser:     getenv("SALES_API_USER", ""),
		SalesAPIPassword: getenv("SALES_API_PASSWORD", ""),

		Email: EmailConfig{
			SMTPHost:     getenv("EMAIL_HOST", ""),
			SMTPPort:     getenvInt("EMAIL_PORT", 587),
			SMTPUsername: getenv("EMAIL_USER", ""),
			SMTPPassword: getenv("EMAIL_PASS", ""),
			SMTPFrom:     getenv("EMAIL_FROM", ""),
		},

		Bootstrap: BootstrapConfig{
			EnsureDefaultAdmin: getenvBool("BOOTSTRAP_DEFAULT_ADMIN", false),
			AdminUsername:      getenv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
			AdminEmail:         getenv("BOOTSTRAP_ADMIN_EMAIL", ""),
			AdminPassword:      getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
