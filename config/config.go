package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"geo-attendance/pkg/paseto"
	util "geo-attendance/pkg/utils"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"

	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type AppConfig struct {
	Env            string
	Port           string
	MongoURI       string
	DBName         string
	StorageDriver  string
	PasetoSecret   string
	Timezone       string
	Location       *time.Location
	AllowedOrigins []string
	CookieSecure   bool
	AdminEmail     string
	AdminPassword  string
	RequestTimeout time.Duration
}

// LoadConfig reads .env files (missing files are ignored), an optional
// CONFIG_PATH file, and the process environment, in increasing priority.
func LoadConfig(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", EnvProd)
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_NAME", "geo-attendance-db")
	v.SetDefault("STORAGE_DRIVER", StorageMongo)
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &AppConfig{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		MongoURI:       v.GetString("MONGOSTRING"),
		DBName:         v.GetString("DB_NAME"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		PasetoSecret:   v.GetString("PASETO_SECRET"),
		Timezone:       v.GetString("TIMEZONE"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		AdminEmail:     strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) finalize() error {
	switch c.StorageDriver {
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGOSTRING is required when STORAGE_DRIVER=mongo")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, expected %s or %s", c.StorageDriver, StorageMongo, StorageMemory)
	}

	if c.PasetoSecret == "" {
		if c.Env != EnvLocal {
			return errors.New("PASETO_SECRET is required outside the local environment")
		}
		key, err := util.GenerateBase64Key(32)
		if err != nil {
			return err
		}
		c.PasetoSecret = key
	}
	if _, err := paseto.DecodeKey(c.PasetoSecret); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
