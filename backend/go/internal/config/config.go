package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// MilvusConfig holds the Milvus connection and collection settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"` // knowledge chunk collection
	Dim        int    `yaml:"dim"`        // embedding dimensionality
}

// KafkaConfig holds the Kafka connection settings for the chat event stream.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DatabaseConfigs groups all storage backends.
type DatabaseConfigs struct {
	MySQL   MySQLConfig  `yaml:"mysql"`
	MongoDB MongoConfig  `yaml:"mongodb"`
	Redis   RedisConfig  `yaml:"redis"`
	Milvus  MilvusConfig `yaml:"milvus"`
	Kafka   KafkaConfig  `yaml:"kafka"`
}

// ModelConfig identifies one hosted model plus its credentials.
type ModelConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL,omitempty"`
}

// LLMConfig selects the chat-model provider.
type LLMConfig struct {
	Provider string      `yaml:"provider"` // "gemini", "openai" or "ollama"
	Gemini   ModelConfig `yaml:"gemini"`
	OpenAI   ModelConfig `yaml:"openai"`
	Ollama   ModelConfig `yaml:"ollama"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider string      `yaml:"provider"`
	Gemini   ModelConfig `yaml:"gemini"`
	OpenAI   ModelConfig `yaml:"openai"`
	Ollama   ModelConfig `yaml:"ollama"`
}

// CalendarConfig holds the OAuth client used to refresh calendar tokens.
type CalendarConfig struct {
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectURL"`
}

// AuthConfig configures the bearer-token identity boundary.
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"`
}

// RateLimiterConfig configures the request rate limiter.
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // tokens per second
	Capacity int     `yaml:"capacity"`
}

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Listen      string `yaml:"listen"` // e.g. ":8080"
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Auth        AuthConfig        `yaml:"auth"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Calendar    CalendarConfig    `yaml:"calendar"`
	Logger      LoggerConfig      `yaml:"logger"`
	Databases   DatabaseConfigs   `yaml:"databases"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// LoadConfig reads and parses the YAML configuration file at path.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	return &cfg, nil
}
