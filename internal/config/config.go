package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Backend   BackendConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Printer   PrinterConfig
	Business  BusinessConfig
	Checkout  CheckoutConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// BackendConfig points at the remote REST backend that owns all business data.
type BackendConfig struct {
	BaseURL string
	// Token is used when the incoming request carries no operator token.
	Token   string
	Timeout time.Duration
}

// AuthConfig controls how operator tokens are treated. The backend remains
// the authority; the console only reads the token.
type AuthConfig struct {
	RequireOperator bool
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	CatalogTTL time.Duration
}

type QueueConfig struct {
	URL            string
	SaleEventQueue string
}

type PrinterConfig struct {
	Type        string // spool, usb, network or none
	USBPath     string
	Address     string
	SpoolDir    string
	CharWidth   int
	SettleDelay time.Duration
	AfterPrint  time.Duration
	Direction   string
	Lang        string
}

// BusinessConfig is printed on receipts and report headers.
type BusinessConfig struct {
	StoreName string
	Address   string
	Phone     string
	Currency  string
}

type CheckoutConfig struct {
	ReceiptTimeLayout string
	DraftsEnabled     bool
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("BACKEND_BASE_URL"),
			Token:   viper.GetString("BACKEND_TOKEN"),
			Timeout: time.Duration(viper.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
		},
		Auth: AuthConfig{
			RequireOperator: viper.GetBool("AUTH_REQUIRE_OPERATOR"),
		},
		Redis: RedisConfig{
			Addr:       viper.GetString("REDIS_ADDR"),
			Password:   viper.GetString("REDIS_PASSWORD"),
			DB:         viper.GetInt("REDIS_DB"),
			CatalogTTL: time.Duration(viper.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
		},
		Queue: QueueConfig{
			URL:            viper.GetString("RABBITMQ_URL"),
			SaleEventQueue: viper.GetString("SALE_EVENTS_QUEUE"),
		},
		Printer: PrinterConfig{
			Type:        viper.GetString("PRINTER_TYPE"),
			USBPath:     viper.GetString("PRINTER_USB_PATH"),
			Address:     viper.GetString("PRINTER_ADDRESS"),
			SpoolDir:    viper.GetString("PRINTER_SPOOL_DIR"),
			CharWidth:   viper.GetInt("PRINTER_CHAR_WIDTH"),
			SettleDelay: time.Duration(viper.GetInt("PRINT_SETTLE_MS")) * time.Millisecond,
			AfterPrint:  time.Duration(viper.GetInt("PRINT_AFTER_MS")) * time.Millisecond,
			Direction:   viper.GetString("PRINT_DIRECTION"),
			Lang:        viper.GetString("PRINT_LANG"),
		},
		Business: BusinessConfig{
			StoreName: viper.GetString("STORE_NAME"),
			Address:   viper.GetString("STORE_ADDRESS"),
			Phone:     viper.GetString("STORE_PHONE"),
			Currency:  viper.GetString("CURRENCY"),
		},
		Checkout: CheckoutConfig{
			ReceiptTimeLayout: viper.GetString("RECEIPT_TIME_LAYOUT"),
			DraftsEnabled:     viper.GetBool("DRAFTS_ENABLED"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "pscafe-console")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_ENABLED", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pscafe_console")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	viper.SetDefault("AUTH_REQUIRE_OPERATOR", false)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 15)
	viper.SetDefault("SALE_EVENTS_QUEUE", "sale.confirmed")
	viper.SetDefault("PRINTER_TYPE", "spool")
	viper.SetDefault("PRINTER_SPOOL_DIR", "./storage/print")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 48)
	viper.SetDefault("PRINT_SETTLE_MS", 250)
	viper.SetDefault("PRINT_AFTER_MS", 500)
	viper.SetDefault("PRINT_DIRECTION", "rtl")
	viper.SetDefault("PRINT_LANG", "ar")
	viper.SetDefault("STORE_NAME", "PlayStation Café")
	viper.SetDefault("CURRENCY", "")
	viper.SetDefault("RECEIPT_TIME_LAYOUT", "2006-01-02 15:04")
	viper.SetDefault("DRAFTS_ENABLED", true)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
