package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Postgres / pgvector configuration
	PostgresHost       string
	PostgresPort       int
	PostgresDB         string
	PostgresUser       string
	PostgresPassword   string
	PostgresCollection string
	EmbeddingDims      int

	// Neo4j configuration
	GraphStoreEnabled bool
	Neo4jURI          string
	Neo4jUsername     string
	Neo4jPassword     string

	// LLM / embedder configuration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ChatModel       string
	EmbeddingModel  string
	EmbedderAPIKey  string
	EmbedderBaseURL string

	// History database
	HistoryDBPath string

	// Authentication
	APIKey            string
	JWTSecret         string
	JWTIssuer         string
	RequestsPerMinute int

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	openAIKey := getEnv("OPENAI_API_KEY", "")
	openAIBase := getEnv("OPENAI_BASE_URL", "")

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8000"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		PostgresHost:       getEnv("POSTGRES_HOST", "postgres"),
		PostgresPort:       getEnvInt("POSTGRES_PORT", 5432),
		PostgresDB:         getEnv("POSTGRES_DB", "postgres"),
		PostgresUser:       getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresCollection: getEnv("POSTGRES_COLLECTION_NAME", "memories"),
		EmbeddingDims:      getEnvInt("EMBEDDING_MODEL_DIMS", 4096),

		GraphStoreEnabled: getEnvBool("GRAPH_STORE_ENABLED", true),
		Neo4jURI:          getEnv("NEO4J_URI", "bolt://neo4j:7687"),
		Neo4jUsername:     getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", "mem0graph"),

		OpenAIAPIKey:   openAIKey,
		OpenAIBaseURL:  openAIBase,
		ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
		EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		// The embedder can point at a different OpenAI-compatible endpoint
		// than the chat model; it falls back to the chat credentials.
		EmbedderAPIKey:  getEnv("EMBEDDER_API_KEY", openAIKey),
		EmbedderBaseURL: getEnv("EMBEDDER_BASE_URL", openAIBase),

		HistoryDBPath: getEnv("HISTORY_DB_PATH", "/app/history/history.db"),

		APIKey:            getEnv("API_KEY", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "recall-backend"),
		RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.IsProduction() && c.APIKey == "" && c.JWTSecret == "" {
		return fmt.Errorf("API_KEY or JWT_SECRET is required in production")
	}
	if c.EmbeddingDims <= 0 {
		return fmt.Errorf("EMBEDDING_MODEL_DIMS must be positive")
	}
	return nil
}

// PostgresDSN renders the connection string for the vector store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
