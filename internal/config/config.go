package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress  string
	DatabaseURI string

	BTCPayAddress string
	BTCPayAPIKey  string
	BTCPayStoreID string

	MailerAddress string
	MailerAPIKey  string
	MailerFrom    string

	// OrderCurrency - фиатная валюта цен каталога и инвойсов.
	OrderCurrency string

	AdminLogin        string
	AdminPasswordHash string
	JWTSecret         string
	TokenExpiration   time.Duration

	// CheckoutRateLimit - максимум запросов оформления заказа
	// с одного клиента за окно в одну минуту.
	CheckoutRateLimit int
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&cfg.BTCPayAddress, "b", "", "адрес BTCPay Server")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envBTCPay := os.Getenv("BTCPAY_ADDRESS"); envBTCPay != "" {
		cfg.BTCPayAddress = envBTCPay
	}

	cfg.BTCPayAPIKey = os.Getenv("BTCPAY_API_KEY")
	cfg.BTCPayStoreID = os.Getenv("BTCPAY_STORE_ID")

	cfg.MailerAddress = os.Getenv("MAILER_ADDRESS")
	cfg.MailerAPIKey = os.Getenv("MAILER_API_KEY")
	cfg.MailerFrom = os.Getenv("MAILER_FROM")
	if cfg.MailerFrom == "" {
		cfg.MailerFrom = "orders@localhost"
	}

	cfg.OrderCurrency = os.Getenv("ORDER_CURRENCY")
	if cfg.OrderCurrency == "" {
		cfg.OrderCurrency = "USD"
	}

	cfg.AdminLogin = os.Getenv("ADMIN_LOGIN")
	if cfg.AdminLogin == "" {
		cfg.AdminLogin = "admin"
	}
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default-secret-change-in-production"
	}

	// Время жизни токена
	cfg.TokenExpiration = 24 * time.Hour
	if envExp := os.Getenv("TOKEN_EXPIRATION"); envExp != "" {
		if d, err := time.ParseDuration(envExp); err == nil {
			cfg.TokenExpiration = d
		}
	}

	cfg.CheckoutRateLimit = 10
	if envLimit := os.Getenv("CHECKOUT_RATE_LIMIT"); envLimit != "" {
		if n, err := strconv.Atoi(envLimit); err == nil && n > 0 {
			cfg.CheckoutRateLimit = n
		}
	}

	return cfg
}
