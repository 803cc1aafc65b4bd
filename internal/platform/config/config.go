package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	strutil "dingauth/pkg/string"
	"dingauth/pkg/validation"
)

// EnvPrefix namespaces environment overrides, e.g. DINGAUTH_SERVER_ADDR.
const EnvPrefix = "DINGAUTH"

// Config is the full process configuration.
type Config struct {
	LogLevel    string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Environment string         `mapstructure:"environment"`
	Server      Server         `mapstructure:"server"`
	DingTalk    DingTalk       `mapstructure:"dingtalk"`
	Session     Session        `mapstructure:"session"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Database    DatabaseConfig `mapstructure:"database"`
	Tracing     Tracing        `mapstructure:"tracing"`
	Kafka       Kafka          `mapstructure:"kafka"`
	Audit       Audit          `mapstructure:"audit"`
	RateLimit   RateLimit      `mapstructure:"rate_limit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`
}

// DingTalk configures the identity provider and the login endpoint.
type DingTalk struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	// TokenSkew is subtracted from the provider's expires_in so tokens are
	// refreshed before DingTalk rejects them.
	TokenSkew time.Duration `mapstructure:"token_skew" validate:"gte=0"`
	Apps      []App         `mapstructure:"apps" validate:"unique=AppKey,dive"`
	Login     Login         `mapstructure:"login"`
	Users     []UserSeed    `mapstructure:"users" validate:"dive"`
}

// App is one registered DingTalk application.
type App struct {
	AppKey    string `mapstructure:"app_key" validate:"required,notblank"`
	AppSecret string `mapstructure:"app_secret" validate:"required,notblank"`
}

// Login describes how credentials are read from inbound requests.
type Login struct {
	Path            string `mapstructure:"path" validate:"required,startswith=/"`
	PostOnly        bool   `mapstructure:"post_only"`
	CodeParameter   string `mapstructure:"code_parameter" validate:"required"`
	UserIDParameter string `mapstructure:"userid_parameter" validate:"required"`
	AppKeyParameter string `mapstructure:"appkey_parameter" validate:"required"`
}

// UserSeed preloads the in-memory user store when no database is configured.
type UserSeed struct {
	UserID      string   `mapstructure:"userid"`
	UnionID     string   `mapstructure:"unionid"`
	Username    string   `mapstructure:"username" validate:"required"`
	Alias       string   `mapstructure:"alias"`
	// Password is hashed with bcrypt at startup unless it already is a bcrypt hash.
	Password    string   `mapstructure:"password"`
	Roles       []string `mapstructure:"roles"`
	Authorities []string `mapstructure:"authorities"`
	Disabled    bool     `mapstructure:"disabled"`
	Locked      bool     `mapstructure:"locked"`
}

// Session configures the token issued after a successful login.
type Session struct {
	SigningKey string        `mapstructure:"signing_key" validate:"required,min=16"`
	Issuer     string        `mapstructure:"issuer" validate:"required"`
	Audience   string        `mapstructure:"audience"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// RedisConfig enables the shared access token store when URL is set.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DatabaseConfig enables the Postgres user store when URL is set.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// Tracing switches provider call spans from the no-op tracer to an
// OpenTelemetry SDK provider.
type Tracing struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter" validate:"oneof=otlphttp stdout"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// Kafka enables publishing login audit events when Brokers is set.
type Kafka struct {
	Brokers         string        `mapstructure:"brokers"`
	Topic           string        `mapstructure:"topic" validate:"required"`
	Acks            string        `mapstructure:"acks" validate:"oneof=all 1 0"`
	Retries         int           `mapstructure:"retries" validate:"gte=0"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"gt=0"`
}

// Audit sizes the login audit pipeline.
type Audit struct {
	// BufferSize > 0 publishes asynchronously through a bounded queue.
	BufferSize int `mapstructure:"buffer_size" validate:"gte=0"`
	// MemoryCapacity bounds the in-memory sink used without Kafka.
	MemoryCapacity int `mapstructure:"memory_capacity" validate:"gte=0"`
}

// RateLimit bounds login attempts per client IP. Counters live in Redis when
// configured.
type RateLimit struct {
	Enabled   bool          `mapstructure:"enabled"`
	Limit     int           `mapstructure:"limit" validate:"gt=0"`
	Window    time.Duration `mapstructure:"window" validate:"gt=0"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("environment", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("dingtalk.enabled", false)
	v.SetDefault("dingtalk.base_url", "https://oapi.dingtalk.com")
	v.SetDefault("dingtalk.http_timeout", 10*time.Second)
	v.SetDefault("dingtalk.token_skew", 5*time.Minute)
	v.SetDefault("dingtalk.login.path", "/login/dingtalk")
	v.SetDefault("dingtalk.login.post_only", true)
	v.SetDefault("dingtalk.login.code_parameter", "loginTmpCode")
	v.SetDefault("dingtalk.login.userid_parameter", "userid")
	v.SetDefault("dingtalk.login.appkey_parameter", "key")

	v.SetDefault("session.signing_key", "dev-secret-key-change-in-production")
	v.SetDefault("session.issuer", "dingauth")
	v.SetDefault("session.audience", "")
	v.SetDefault("session.ttl", 2*time.Hour)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.key_prefix", "dingauth:token:")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "otlphttp")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.service_name", "dingauth")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "dingauth.audit.login")
	v.SetDefault("kafka.acks", "all")
	v.SetDefault("kafka.retries", 3)
	v.SetDefault("kafka.delivery_timeout", 10*time.Second)

	v.SetDefault("audit.buffer_size", 256)
	v.SetDefault("audit.memory_capacity", 1000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.key_prefix", "dingauth:ratelimit:")
}

// Load reads defaults, then the optional YAML file at path, then DINGAUTH_*
// environment variables, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DingTalk.normalizeUsers()
	if err := validation.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// normalizeUsers cleans seeded grant lists, which often come from
// comma-separated env values.
func (d *DingTalk) normalizeUsers() {
	for i := range d.Users {
		d.Users[i].Roles = strutil.DedupeAndTrim(d.Users[i].Roles)
		d.Users[i].Authorities = strutil.DedupeAndTrim(d.Users[i].Authorities)
	}
}

// AppSecrets flattens the configured apps into an appKey -> appSecret table.
func (d DingTalk) AppSecrets() map[string]string {
	out := make(map[string]string, len(d.Apps))
	for _, app := range d.Apps {
		out[app.AppKey] = app.AppSecret
	}
	return out
}
