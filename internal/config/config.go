package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the registry service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	UploadDir           string
	MaxUploadMB         int
	PageSize            int
	CurrentAcademicYear int
	FlashTTL            time.Duration
	FormRateLimit       int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAMPUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Campus Registry")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.url", "file:campus.db?_foreign_keys=on")
	v.SetDefault("upload.dir", "uploads/photos")
	v.SetDefault("upload.max_size_mb", 16)
	v.SetDefault("listing.page_size", 10)
	v.SetDefault("academic.current_year", 2025)
	v.SetDefault("flash.ttl", "10m")
	v.SetDefault("http.form_rate_limit", 120)

	ttlString := v.GetString("flash.ttl")
	if ttlString == "" {
		ttlString = "10m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid flash ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		UploadDir:           v.GetString("upload.dir"),
		MaxUploadMB:         v.GetInt("upload.max_size_mb"),
		PageSize:            v.GetInt("listing.page_size"),
		CurrentAcademicYear: v.GetInt("academic.current_year"),
		FlashTTL:            ttl,
		FormRateLimit:       v.GetInt("http.form_rate_limit"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.UploadDir == "" {
		return Config{}, fmt.Errorf("upload directory must be provided")
	}

	if cfg.CurrentAcademicYear <= 0 {
		return Config{}, fmt.Errorf("invalid academic year %d", cfg.CurrentAcademicYear)
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 16
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	return cfg, nil
}
