package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Email    EmailConfig
	OTP      OTPConfig
	Session  SessionConfig
	Cron     CronConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Env     string
	Debug   bool
	LogPath string
}

// IsProduction switches cookies to the __Secure- prefix and strict SameSite.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

type EmailConfig struct {
	Provider             string // postmark, smtp or log
	Host                 string
	Port                 int
	User                 string
	Password             string
	From                 string
	PostmarkServerToken  string
	PostmarkAccountToken string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

// Expiry returns the lifetime of an issued code.
func (c OTPConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type SessionConfig struct {
	TTLDays         int
	RenewWindowDays int
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

func (c SessionConfig) RenewWindow() time.Duration {
	return time.Duration(c.RenewWindowDays) * 24 * time.Hour
}

type CronConfig struct {
	Secret               string
	SweepIntervalMinutes int
}

func (c CronConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// LoadConfig reads the given .env file (if present) and the process environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "passwordless-auth")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("SESSION_TTL_DAYS", 30)
	v.SetDefault("SESSION_RENEW_WINDOW_DAYS", 15)
	v.SetDefault("SWEEP_INTERVAL_MINUTES", 0)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Env:     v.GetString("APP_ENV"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Email: EmailConfig{
			Provider:             v.GetString("EMAIL_PROVIDER"),
			Host:                 v.GetString("SMTP_HOST"),
			Port:                 v.GetInt("SMTP_PORT"),
			User:                 v.GetString("SMTP_USER"),
			Password:             v.GetString("SMTP_PASS"),
			From:                 v.GetString("EMAIL_FROM"),
			PostmarkServerToken:  v.GetString("POSTMARK_SERVER_TOKEN"),
			PostmarkAccountToken: v.GetString("POSTMARK_ACCOUNT_TOKEN"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
		},
		Session: SessionConfig{
			TTLDays:         v.GetInt("SESSION_TTL_DAYS"),
			RenewWindowDays: v.GetInt("SESSION_RENEW_WINDOW_DAYS"),
		},
		Cron: CronConfig{
			Secret:               v.GetString("CRON_SECRET"),
			SweepIntervalMinutes: v.GetInt("SWEEP_INTERVAL_MINUTES"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the auth engine cannot run with.
func (c *Config) Validate() error {
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		return errors.New("OTP_LENGTH must be between 4 and 10")
	}
	if c.OTP.ExpiryMinutes <= 0 {
		return errors.New("OTP_EXPIRY_MINUTES must be positive")
	}
	if c.Session.TTLDays <= 0 {
		return errors.New("SESSION_TTL_DAYS must be positive")
	}
	if c.Session.RenewWindowDays < 0 || c.Session.RenewWindowDays >= c.Session.TTLDays {
		return errors.New("SESSION_RENEW_WINDOW_DAYS must be between 0 and SESSION_TTL_DAYS")
	}
	return nil
}
