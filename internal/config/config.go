package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL"`

	// LLMTimeoutSeconds bounds each individual extraction, merge, or
	// synthesis call.
	LLMTimeoutSeconds int `envconfig:"LLM_TIMEOUT_SECONDS" default:"60"`

	// WorkerIntervalSeconds is the poll interval of the ingestion worker;
	// BatchDelayMS is the pause between entries within one claimed batch.
	WorkerIntervalSeconds int `envconfig:"WORKER_INTERVAL_SECONDS" default:"5"`
	BatchDelayMS          int `envconfig:"BATCH_DELAY_MS" default:"500"`
	WorkerBatchSize       int `envconfig:"WORKER_BATCH_SIZE" default:"50"`

	// Bootstrap: create initial space and API key on startup
	InitSpaceName string `envconfig:"INIT_SPACE_NAME"`
	InitAPIKey    string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("HIVEMIND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) WorkerInterval() time.Duration {
	return time.Duration(c.WorkerIntervalSeconds) * time.Second
}

func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}
