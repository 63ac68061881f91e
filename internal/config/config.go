package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Assets AssetsConfig
	Badge  BadgeConfig
	SMTP   SMTPConfig
	Limits LimitsConfig
}

type ServerConfig struct {
	Host     string
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

type AssetsConfig struct {
	Background  string `validate:"required"`
	Logo        string `validate:"required"`
	BoldFont    string
	RegularFont string
}

type BadgeConfig struct {
	InstitutionName string `validate:"required"`
	OutputDir       string `validate:"required"`
	QREnabled       bool
}

// SMTPConfig holds the sender credentials. Mail is disabled when either
// Username or Password is empty.
type SMTPConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gt=0,lt=65536"`
	Username string
	Password string
	Subject  string
	Timeout  time.Duration `validate:"gt=0"`
}

// Enabled reports whether credentials were supplied.
func (c SMTPConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

type LimitsConfig struct {
	MaxUploadSize       int64   `validate:"gt=0"`
	SubmitRatePerMinute float64 `validate:"gt=0"`
	SubmitRateBurst     int     `validate:"gt=0"`
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Load reads .env (if present) and the environment. The returned config is
// not modified afterwards.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ASSETS_DIR", filepath.Join("static", "assets"))
	v.SetDefault("OUTPUT_DIR", filepath.Join("static", "output"))
	v.SetDefault("INSTITUTION_NAME", "FRONTIER REGIONAL HOSPITAL")
	v.SetDefault("BADGE_QR_ENABLED", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("EMAIL_SUBJECT", "Your Staff ID Card")
	v.SetDefault("EMAIL_TIMEOUT", 15*time.Second)
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("SUBMIT_RATE_PER_MINUTE", 30)
	v.SetDefault("SUBMIT_RATE_BURST", 10)

	v.AutomaticEnv()

	assetsDir := v.GetString("ASSETS_DIR")
	v.SetDefault("BACKGROUND_IMAGE", filepath.Join(assetsDir, "background.jpeg"))
	v.SetDefault("LOGO_IMAGE", filepath.Join(assetsDir, "download.jpeg"))
	v.SetDefault("FONT_BOLD", filepath.Join(assetsDir, "fonts", "bold.ttf"))
	v.SetDefault("FONT_REGULAR", filepath.Join(assetsDir, "fonts", "regular.ttf"))

	cfg := &Config{
		Server: ServerConfig{
			Host:     v.GetString("HOST"),
			Port:     v.GetString("PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Assets: AssetsConfig{
			Background:  v.GetString("BACKGROUND_IMAGE"),
			Logo:        v.GetString("LOGO_IMAGE"),
			BoldFont:    v.GetString("FONT_BOLD"),
			RegularFont: v.GetString("FONT_REGULAR"),
		},
		Badge: BadgeConfig{
			InstitutionName: v.GetString("INSTITUTION_NAME"),
			OutputDir:       v.GetString("OUTPUT_DIR"),
			QREnabled:       v.GetBool("BADGE_QR_ENABLED"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SENDER_EMAIL"),
			Password: v.GetString("SENDER_PASSWORD"),
			Subject:  v.GetString("EMAIL_SUBJECT"),
			Timeout:  v.GetDuration("EMAIL_TIMEOUT"),
		},
		Limits: LimitsConfig{
			MaxUploadSize:       v.GetInt64("MAX_UPLOAD_SIZE"),
			SubmitRatePerMinute: v.GetFloat64("SUBMIT_RATE_PER_MINUTE"),
			SubmitRateBurst:     v.GetInt("SUBMIT_RATE_BURST"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
