package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP     `envPrefix:"HTTP_"`
	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Password Password `envPrefix:"PASSWORD_"`
	Storage  Storage  `envPrefix:"MINIO_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Address            string        `env:"ADDRESS" envDefault:":3000"`
	EnableHTTPS        bool          `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string        `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string        `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	ReadTimeout        time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout        time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	MaxContentBytes    int64         `env:"MAX_CONTENT_BYTES" envDefault:"104857600"`
}

// Database contains database connection parameters. An empty DSN selects
// the in-memory stores.
type Database struct {
	DSN      string `env:"DSN"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"10"`
}

// JWT contains JWT-related parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"6h"`
	Issuer string        `env:"ISSUER" envDefault:"modulehub"`
}

// Password contains password hashing parameters.
type Password struct {
	Cost      int `env:"COST" envDefault:"10"`
	MinLength int `env:"MIN_LENGTH" envDefault:"8"`
}

// Storage contains object storage parameters. An empty endpoint disables
// module content.
type Storage struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"modulehub-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"modulehub-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"modulehub-content"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("failed to parse config: JWT_TTL must be positive")
	}

	return &cfg, nil
}
