package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	APIKey      string        `env:"HF_API_KEY"`
	APIKeyParam string        `env:"HF_API_KEY_PARAM"`                   // SSM parameter holding the key, used when HF_API_KEY is empty
	Endpoint    string        `env:"HF_ENDPOINT"`                        // empty means image.DefaultEndpoint
	Generator   string        `env:"GENERATOR" envDefault:"huggingface"` // huggingface|stub
	StubWarmup  int           `env:"STUB_WARMUP" envDefault:"2"`         // loading answers the stub gives before an image
	Attempts    int           `env:"ATTEMPTS" envDefault:"5"`
	RetryDelay  time.Duration `env:"RETRY_DELAY" envDefault:"3s"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	OutputDir    string `env:"OUTPUT_DIR" envDefault:"images"`
	Bucket       string `env:"BUCKET"`
	Distribution string `env:"DISTRIBUTION"`

	Prompts      []string `env:"PROMPTS" envSeparator:";"`
	PromptsParam string   `env:"PROMPTS_PARAM"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Attempts < 1:
		return fmt.Errorf("ATTEMPTS must be at least 1, got %d", c.Attempts)
	case c.RetryDelay < 0:
		return fmt.Errorf("RETRY_DELAY must not be negative, got %s", c.RetryDelay)
	case c.Generator != "huggingface" && c.Generator != "stub":
		return fmt.Errorf("GENERATOR must be huggingface or stub, got %q", c.Generator)
	case c.StubWarmup < 0:
		return fmt.Errorf("STUB_WARMUP must not be negative, got %d", c.StubWarmup)
	}
	return nil
}

// UseS3 reports whether images are stored in a bucket rather than on disk.
func (c *Config) UseS3() bool {
	return c.Bucket != ""
}
