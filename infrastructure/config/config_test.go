package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Environment:   "development",
		OpenAIAPIKey:  "sk-test",
		EmbeddingDims: 1536,
	}
}

func TestValidateRequiresOpenAIKey(t *testing.T) {
	cfg := baseConfig()
	cfg.OpenAIAPIKey = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRequiresAuth(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveDims(t *testing.T) {
	cfg := baseConfig()
	cfg.EmbeddingDims = 0
	assert.Error(t, cfg.Validate())
}

func TestIsProduction(t *testing.T) {
	cfg := baseConfig()
	assert.False(t, cfg.IsProduction())

	cfg.Environment = "production"
	assert.True(t, cfg.IsProduction())
}

func TestPostgresDSN(t *testing.T) {
	cfg := baseConfig()
	cfg.PostgresUser = "postgres"
	cfg.PostgresPassword = "pw"
	cfg.PostgresHost = "db"
	cfg.PostgresPort = 5432
	cfg.PostgresDB = "memories"

	assert.Equal(t, "postgres://postgres:pw@db:5432/memories", cfg.PostgresDSN())
}
