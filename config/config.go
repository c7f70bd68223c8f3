package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	RazorpayKey    string
	RazorpaySecret string
	WebhookSecret  string

	// MinPaymentAmount is the smallest accepted payment in minor units.
	MinPaymentAmount int64

	JWTSecret string
	Port      string
	Env       string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	minAmount := int64(100) // one rupee
	if raw := os.Getenv("MIN_PAYMENT_AMOUNT"); raw != "" {
		parsed, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("invalid MIN_PAYMENT_AMOUNT: %v", perr)
		}
		minAmount = parsed
	}

	smtpPort := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		parsed, perr := strconv.Atoi(raw)
		if perr != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %v", perr)
		}
		smtpPort = parsed
	}

	config := &Config{
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           os.Getenv("DB_PORT"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RazorpayKey:      os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:   os.Getenv("RAZORPAY_SECRET"),
		WebhookSecret:    os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		MinPaymentAmount: minAmount,
		JWTSecret:        os.Getenv("JWT_SECRET"),
		Port:             os.Getenv("PORT"),
		Env:              os.Getenv("ENV"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         os.Getenv("SMTP_FROM"),
	}

	return config, nil
}
