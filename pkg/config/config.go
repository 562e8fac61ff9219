package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	ArticleStorePostgres = "postgres"
	ArticleStoreMongo    = "mongo"

	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string
	ArticleStore            string
	AuthProvider            string
	JWTSecret               string
	MetricsPort             string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresUrl:             getEnv("POSTGRES_URL", "host=localhost port=5432 user=postgres dbname=conduit sslmode=disable"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "conduit"),
		ArticleStore:            getEnv("ARTICLE_STORE", ArticleStorePostgres),
		AuthProvider:            getEnv("AUTH_PROVIDER", AuthProviderJWT),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.ArticleStore {
	case ArticleStorePostgres:
	case ArticleStoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when ARTICLE_STORE=%s", ArticleStoreMongo)
		}
	default:
		return fmt.Errorf("unknown ARTICLE_STORE %q", c.ArticleStore)
	}

	switch c.AuthProvider {
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=%s", AuthProviderJWT)
		}
	case AuthProviderFirebase:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=%s", AuthProviderFirebase)
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.PostgresUrl == "" {
		return fmt.Errorf("POSTGRES_URL is required")
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("METRICS_PORT must differ from PORT")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
