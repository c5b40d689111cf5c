package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN"`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET"`

	ConfluenceURL      string `envconfig:"CONFLUENCE_URL"`
	ConfluenceUsername string `envconfig:"CONFLUENCE_USERNAME"`
	ConfluenceAPIToken string `envconfig:"CONFLUENCE_API_TOKEN"`
	// ConfluenceSpaceKey is the default space for page listings when a
	// message names no space of its own.
	ConfluenceSpaceKey string `envconfig:"CONFLUENCE_SPACE_KEY"`

	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel        string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	OpenAIContextLimit int    `envconfig:"OPENAI_CONTEXT_LIMIT" default:"100000"`

	GoogleOAuthToken string `envconfig:"GOOGLE_OAUTH_TOKEN"`

	// APIToken guards the operator endpoints (/pages, /ask). Empty disables them.
	APIToken string `envconfig:"API_TOKEN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FINGERTIPS", &cfg); err != nil {
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

func (c *Config) HasSlack() bool {
	return c.SlackBotToken != "" && c.SlackSigningSecret != ""
}

func (c *Config) HasConfluence() bool {
	return c.ConfluenceURL != "" && c.ConfluenceUsername != "" && c.ConfluenceAPIToken != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasOperatorAPI() bool {
	return c.APIToken != ""
}
