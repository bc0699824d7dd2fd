package config

import (
	"github.com/caarlos0/env/v8"
	"log/slog"
	"time"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Image Background Remover"`
	Port    string `env:"PORT" envDefault:"8080"`

	LogLevel             string `env:"LOG_LEVEL" envDefault:"debug"`
	OtlpLogsEnabled      bool   `env:"OTLP_LOGS_ENABLED" envDefault:"false"`
	TraceStdoutEnabled   bool   `env:"TRACE_STDOUT_ENABLED" envDefault:"false"`
	OtelConfigureEnabled bool   `env:"OTEL_CONFIGURE_ENABLED" envDefault:"false"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`

	RateLimitMaxRequests   int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitDurationInSec int `env:"RATE_LIMIT_DURATION_IN_SEC" envDefault:"5"`

	// MaxUploadSize is checked by the source; BodyLimit only protects the server.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	BodyLimit     int   `env:"BODY_LIMIT" envDefault:"16777216"`

	// MaxImagePixels caps width*height so small files cannot expand into huge images.
	MaxImagePixels int64 `env:"MAX_IMAGE_PIXELS" envDefault:"178956970"`

	DefaultImagePath     string `env:"DEFAULT_IMAGE_PATH" envDefault:"./zebra.jpg"`
	DefaultImageS3Bucket string `env:"DEFAULT_IMAGE_S3_BUCKET"`
	DefaultImageS3Key    string `env:"DEFAULT_IMAGE_S3_KEY" envDefault:"zebra.jpg"`

	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Endpoint  string `env:"S3_ENDPOINT"`

	// colorkey only suits plain backdrops; rembg runs the ML model.
	Remover           string        `env:"REMOVER" envDefault:"rembg"`
	RembgURL          string        `env:"REMBG_URL" envDefault:"http://localhost:7000"`
	RembgModel        string        `env:"REMBG_MODEL" envDefault:"u2net"`
	RembgTimeout      time.Duration `env:"REMBG_TIMEOUT" envDefault:"60s"`
	ColorKeyTolerance float64       `env:"COLORKEY_TOLERANCE" envDefault:"40"`

	AutoRotate bool `env:"AUTO_ROTATE" envDefault:"false"`
}

func New() *Config {
	conf, err := Parse()
	if err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}

// Parse reads the configuration from the environment without panicking.
func Parse() (*Config, error) {
	conf := &Config{}

	if err := env.Parse(conf); err != nil {
		return nil, err
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) RateLimitDuration() time.Duration {
	return time.Duration(c.RateLimitDurationInSec) * time.Second
}

func (c *Config) UseS3DefaultImage() bool {
	return c.DefaultImageS3Bucket != ""
}
