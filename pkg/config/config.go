package config

import "fmt"

// Config holds the application configuration
type Config struct {
	ServerPort     string   `envconfig:"SERVER_PORT" default:"8710"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	Database       DatabaseConfig
	Auth           AuthConfig
	LLM            LLMConfig
	CloudProvider  string   `envconfig:"CLOUD_PROVIDER"`
	DataTypes      []string `envconfig:"DATA_TYPES" default:"text/csv,text/json"`
}

// DatabaseConfig holds the database connection configuration
type DatabaseConfig struct {
	Username     string `envconfig:"DB_USERNAME"`
	Password     string `envconfig:"DB_PASSWORD"`
	Host         string `envconfig:"DB_HOST"`
	Port         string `envconfig:"DB_PORT"`
	Database     string `envconfig:"DB_DATABASE"`
	SSLMode      string `envconfig:"DB_SSL_MODE" default:"require"`
	PoolMaxConns int    `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
}

// AuthConfig holds the OIDC login and API key signing configuration
type AuthConfig struct {
	Provider      string `envconfig:"AUTH_PROVIDER" default:"google"`
	Issuer        string `envconfig:"AUTH_ISSUER"`
	ClientID      string `envconfig:"AUTH_CLIENT_ID"`
	ClientSecret  string `envconfig:"AUTH_CLIENT_SECRET"`
	RedirectURL   string `envconfig:"AUTH_REDIRECT_URL"`
	SessionKey    string `envconfig:"AUTH_SESSION_KEY"`
	APIKeySecret  string `envconfig:"AUTH_APIKEY_SECRET"`
	APIKeyExpDays int    `envconfig:"AUTH_APIKEY_EXP_DAYS" default:"30"`
}

// LLMConfig holds the enabled LLM provider configuration.
// Providers maps a provider name to the model it should serve,
// e.g. LLM_PROVIDERS="ollama:gemma2,vertex:gemini-pro".
type LLMConfig struct {
	Providers     map[string]string `envconfig:"LLM_PROVIDERS"`
	OllamaBaseURL string            `envconfig:"LLM_OLLAMA_BASE_URL" default:"http://localhost:11434"`
}

// ToMigrationUri returns a string for the migration package with the correct prefix
func (d DatabaseConfig) ToMigrationUri() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
		d.SSLMode,
	)
}

// ToDbConnectionUri returns a connection URI for the pgx package
func (d DatabaseConfig) ToDbConnectionUri() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
		d.SSLMode,
	)
}

// ActiveLLMs returns the names of the configured LLM providers.
func (l LLMConfig) ActiveLLMs() []string {
	names := make([]string, 0, len(l.Providers))
	for name := range l.Providers {
		names = append(names, name)
	}
	return names
}
