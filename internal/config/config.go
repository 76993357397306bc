package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/parisxmas/OxiDB/qrform/internal/auth"
	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

// Development defaults. Override them in any real deployment.
const (
	DefaultJWTSecret     = "your-secret-key-change-in-production"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

const (
	BackendFile     = "file"
	BackendOxiDB    = "oxidb"
	BackendPostgres = "postgres"
)

// ConfigFileEnv names a YAML file read before the environment.
const ConfigFileEnv = "QRFORM_CONFIG"

type Config struct {
	Port              int
	BaseURL           string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	StoreBackend string
	DataFile     string
	OxiDBHost    string
	OxiDBPort    int
	PoolSize     int
	DatabaseURL  string

	StaticDir string
	GelfAddr  string

	QRSize   int
	QRMargin int
	QRDark   string
	QRLight  string
}

// Load reads defaults, then the optional config file, then environment
// variables. An empty path falls back to $QRFORM_CONFIG.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 3000)
	v.SetDefault("base_url", "")
	v.SetDefault("jwt_secret", DefaultJWTSecret)
	v.SetDefault("token_ttl", auth.DefaultTokenTTL)
	v.SetDefault("admin_username", DefaultAdminUsername)
	v.SetDefault("admin_password", DefaultAdminPassword)
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("store_backend", BackendFile)
	v.SetDefault("data_file", "submissions.json")
	v.SetDefault("oxidb_host", "127.0.0.1")
	v.SetDefault("oxidb_port", 4444)
	v.SetDefault("oxidb_pool_size", 3)
	v.SetDefault("database_url", "")
	v.SetDefault("static_dir", "")
	v.SetDefault("gelf_addr", "")
	v.SetDefault("qr_size", 300)
	v.SetDefault("qr_margin", 2)
	v.SetDefault("qr_dark", "#000000")
	v.SetDefault("qr_light", "#FFFFFF")
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:              v.GetInt("port"),
		BaseURL:           v.GetString("base_url"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		AdminUsername:     v.GetString("admin_username"),
		AdminPassword:     v.GetString("admin_password"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
		StoreBackend:      strings.ToLower(v.GetString("store_backend")),
		DataFile:          v.GetString("data_file"),
		OxiDBHost:         v.GetString("oxidb_host"),
		OxiDBPort:         v.GetInt("oxidb_port"),
		PoolSize:          v.GetInt("oxidb_pool_size"),
		DatabaseURL:       v.GetString("database_url"),
		StaticDir:         v.GetString("static_dir"),
		GelfAddr:          v.GetString("gelf_addr"),
		QRSize:            v.GetInt("qr_size"),
		QRMargin:          v.GetInt("qr_margin"),
		QRDark:            v.GetString("qr_dark"),
		QRLight:           v.GetString("qr_light"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("config: ADMIN_USERNAME must not be empty")
	}
	// A bare number is read as nanoseconds; require a unit like "24h".
	if c.TokenTTL < time.Second {
		return fmt.Errorf("config: TOKEN_TTL %v is under one second; use a unit suffix such as 24h", c.TokenTTL)
	}
	switch c.StoreBackend {
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("config: DATA_FILE must not be empty")
		}
	case BackendOxiDB:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AdminIdentity returns the admin with a bcrypt hash, hashing
// AdminPassword when no precomputed hash is configured.
func (c *Config) AdminIdentity() (models.AdminIdentity, error) {
	hash := c.AdminPasswordHash
	if hash == "" {
		var err error
		if hash, err = auth.HashPassword(c.AdminPassword); err != nil {
			return models.AdminIdentity{}, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return models.AdminIdentity{Username: c.AdminUsername, PasswordHash: hash}, nil
}

// Warnings lists development defaults still in effect.
func (c *Config) Warnings() []string {
	var w []string
	if c.JWTSecret == DefaultJWTSecret {
		w = append(w, "JWT_SECRET is the development default")
	}
	if c.AdminPasswordHash == "" && c.AdminPassword == DefaultAdminPassword {
		w = append(w, "ADMIN_PASSWORD is the development default")
	}
	return w
}
