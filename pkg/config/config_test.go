package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ARTICLE_STORE", "AUTH_PROVIDER", "LOG_LEVEL", "METRICS_PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ArticleStorePostgres, cfg.ArticleStore)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ARTICLE_STORE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ArticleStoreMongo, cfg.ArticleStore)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:         "8080",
			MetricsPort:  "9090",
			PostgresUrl:  "host=localhost",
			ArticleStore: ArticleStorePostgres,
			AuthProvider: AuthProviderJWT,
			JWTSecret:    "secret",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.ArticleStore = "redis" }, "unknown ARTICLE_STORE"},
		{"mongo without uri", func(c *Config) { c.ArticleStore = ArticleStoreMongo }, "MONGO_URI"},
		{"jwt without secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"firebase without credentials", func(c *Config) { c.AuthProvider = AuthProviderFirebase }, "FIREBASE_CREDENTIALS_PATH"},
		{"unknown provider", func(c *Config) { c.AuthProvider = "basic" }, "unknown AUTH_PROVIDER"},
		{"missing postgres", func(c *Config) { c.PostgresUrl = "" }, "POSTGRES_URL"},
		{"shared port", func(c *Config) { c.MetricsPort = c.Port }, "METRICS_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
