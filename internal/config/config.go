package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Backend names the store implementation selected by the DATABASE url scheme.
type Backend string

const (
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Sentry    SentryConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	StaticDir    string
	MaxBodyBytes int64
}

type DatabaseConfig struct {
	// URL may contain the literal placeholder <PASSWORD>.
	URL      string
	Password string
	Name     string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	// MaxPerSecond caps outgoing messages; zero means unlimited.
	MaxPerSecond float64
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type RedisConfig struct {
	URL string
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type SentryConfig struct {
	DSN string
}

type JobsConfig struct {
	ResetTokenCleanupSchedule string
}

// Load reads .env from the working directory when present, then the process
// environment, which takes precedence.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	env := v.GetString("NODE_ENV")
	if env == "" {
		env = v.GetString("ENVIRONMENT")
	}
	if env == "" {
		env = EnvDevelopment
	}

	jwtExpiresIn, err := parseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	rateWindow, err := parseDuration(v.GetString("RATE_LIMIT_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	corsMaxAge, err := parseDuration(v.GetString("CORS_MAX_AGE"))
	if err != nil {
		return nil, fmt.Errorf("invalid CORS_MAX_AGE: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			Environment:  env,
			StaticDir:    v.GetString("STATIC_DIR"),
			MaxBodyBytes: v.GetInt64("MAX_BODY_BYTES"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: jwtExpiresIn,
		},
		SMTP: SMTPConfig{
			Host:         v.GetString("SMTP_HOST"),
			Port:         v.GetInt("SMTP_PORT"),
			User:         v.GetString("SMTP_USER"),
			Password:     v.GetString("SMTP_PASSWORD"),
			From:         v.GetString("SMTP_FROM"),
			MaxPerSecond: v.GetFloat64("SMTP_MAX_PER_SECOND"),
		},
		RateLimit: RateLimitConfig{
			Max:    v.GetInt("RATE_LIMIT_MAX"),
			Window: rateWindow,
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           corsMaxAge,
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
		},
		Sentry: SentryConfig{
			DSN: v.GetString("SENTRY_DSN"),
		},
		Jobs: JobsConfig{
			ResetTokenCleanupSchedule: v.GetString("RESET_TOKEN_CLEANUP_SCHEDULE"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("DATABASE_NAME", "jobs")
	v.SetDefault("JWT_EXPIRES_IN", "90d")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "Job Board <no-reply@jobboard.local>")
	v.SetDefault("SMTP_MAX_PER_SECOND", 5)
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining")
	v.SetDefault("CORS_MAX_AGE", "12h")
	v.SetDefault("MQTT_CLIENT_ID", "job-recommender")
	v.SetDefault("MQTT_TOPIC_PREFIX", "jobboard")
	v.SetDefault("RESET_TOKEN_CLEANUP_SCHEDULE", "@every 1h")
}

// Validate reports the first setting the process cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE is required")
	}
	if strings.Contains(c.Database.URL, "<PASSWORD>") && c.Database.Password == "" {
		return errors.New("DATABASE_PASSWORD is required when DATABASE contains <PASSWORD>")
	}
	if _, err := c.Database.Backend(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if c.IsProduction() && c.SMTP.Host == "" {
		return errors.New("SMTP_HOST is required in production")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// DatabaseURL returns DATABASE with <PASSWORD> replaced by DATABASE_PASSWORD.
func (c *DatabaseConfig) DatabaseURL() string {
	return strings.ReplaceAll(c.URL, "<PASSWORD>", c.Password)
}

func (c *DatabaseConfig) Backend() (Backend, error) {
	scheme, _, ok := strings.Cut(c.URL, "://")
	if !ok {
		return "", fmt.Errorf("DATABASE %q has no scheme", c.URL)
	}

	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE scheme %q", scheme)
	}
}

// parseDuration accepts time.ParseDuration input plus a whole-day "<n>d" form.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
