// Package config defines the server's runtime configuration and its
// validation, in the Config/DefaultConfig shape used throughout this
// repository.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ServerConfig is the full set of knobs the accept loop, pool, admission
// layer, and dispatcher read from at startup. Fields carry `validate` tags
// checked once in Validate before the server binds. MaxRequestLineBytes,
// ReadTimeout, and WriteTimeout are validated but not passed to any
// component.
type ServerConfig struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`

	PoolWorkers  int `validate:"min=1"`
	PoolQueueCap int `validate:"min=0"`

	MaxRequestLineBytes int   `validate:"min=1"`
	MaxHeaderBytes      int   `validate:"min=1"`
	MaxBodyBytes        int64 `validate:"min=0"`
	MaxURILength        int   `validate:"min=1"`

	MaxFileReadBytes int64 `validate:"min=1"`

	ReadTimeout  time.Duration `validate:"min=0"`
	WriteTimeout time.Duration `validate:"min=0"`
	IdleTimeout  time.Duration `validate:"min=0"`

	ResourcesDir string `validate:"required"`
	UploadsDir   string `validate:"required"`

	RateLimitEnabled bool

	CORSEnabled        bool
	CORSAllowedOrigins []string

	AdminAddr string // empty disables the admin dashboard listener
}

// DefaultConfig returns the server defaults: port 8080, host 127.0.0.1,
// 10 workers, matching spec.md's documented CLI defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host: "127.0.0.1",
		Port: 8080,

		PoolWorkers:  10,
		PoolQueueCap: 64,

		MaxRequestLineBytes: 8192,
		MaxHeaderBytes:      8192,
		MaxBodyBytes:        1 << 20, // 1 MiB JSON upload cap
		MaxURILength:        2048,

		MaxFileReadBytes: 10 << 20, // 10 MiB read cap; larger files are refused

		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,

		ResourcesDir: "testdata/resources",
		UploadsDir:   "testdata/resources/uploads",

		RateLimitEnabled: true,
	}
}

var validate = validator.New()

// Validate runs struct-tag validation over cfg, returning the first
// failing field as a descriptive error.
func (cfg ServerConfig) Validate() error {
	return validate.Struct(cfg)
}
