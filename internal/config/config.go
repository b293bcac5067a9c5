package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int           `yaml:"max_open_conns"`
			MaxIdleConns    int           `yaml:"max_idle_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	JWT struct {
		Secret           string `yaml:"secret"`
		Issuer           string `yaml:"issuer"`
		Audience         string `yaml:"audience"`
		AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
		RefreshTTLDays   int    `yaml:"refresh_ttl_days"`
	} `yaml:"jwt"`

	Auth struct {
		DefaultRole      string        `yaml:"default_role"`
		OperationTimeout time.Duration `yaml:"operation_timeout"`
		Reset            struct {
			OTPTTLMinutes int `yaml:"otp_ttl_minutes"`
			OTPLength     int `yaml:"otp_length"`
			DailyCap      int `yaml:"daily_cap"`
			MaxAttempts   int `yaml:"max_attempts"`
		} `yaml:"reset"`
	} `yaml:"auth"`

	Security struct {
		PasswordPolicy struct {
			MinLength  int `yaml:"min_length"`
			BcryptCost int `yaml:"bcrypt_cost"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Rate struct {
		Enabled bool `yaml:"enabled"`

		Login struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`

		Forgot struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // dev only
	} `yaml:"smtp"`

	Email struct {
		ProductName string `yaml:"product_name"`
	} `yaml:"email"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads the YAML file at path, applies environment overrides and defaults,
// then validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config
	c.Rate.Enabled = true
	c.Metrics.Enabled = true

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "clothingshop"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "clothingshop-clients"
	}
	if c.JWT.AccessTTLMinutes == 0 {
		c.JWT.AccessTTLMinutes = 60
	}
	if c.JWT.RefreshTTLDays == 0 {
		c.JWT.RefreshTTLDays = 7
	}
	if c.Auth.DefaultRole == "" {
		c.Auth.DefaultRole = "Customer"
	}
	if c.Auth.OperationTimeout == 0 {
		c.Auth.OperationTimeout = 10 * time.Second
	}
	if c.Auth.Reset.OTPTTLMinutes == 0 {
		c.Auth.Reset.OTPTTLMinutes = 5
	}
	if c.Auth.Reset.OTPLength == 0 {
		c.Auth.Reset.OTPLength = 6
	}
	if c.Auth.Reset.DailyCap == 0 {
		c.Auth.Reset.DailyCap = 5
	}
	if c.Auth.Reset.MaxAttempts == 0 {
		c.Auth.Reset.MaxAttempts = 5
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 6
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == 0 {
		c.Rate.Login.Window = time.Minute
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 5
	}
	if c.Rate.Forgot.Window == 0 {
		c.Rate.Forgot.Window = 10 * time.Minute
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "clothingshop:rl:"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.ProductName == "" {
		c.Email.ProductName = "ClothingShop"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// AccessTTL is the access token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

// RefreshTTL is the refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

// OTPTTL is how long a reset code stays redeemable.
func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.Auth.Reset.OTPTTLMinutes) * time.Minute
}

// IsProd reports whether the service runs in production mode.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod") || strings.EqualFold(c.App.Env, "production")
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvDur("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvInt("JWT_ACCESS_TTL_MINUTES"); ok {
		c.JWT.AccessTTLMinutes = v
	}
	if v, ok := getEnvInt("JWT_REFRESH_TTL_DAYS"); ok {
		c.JWT.RefreshTTLDays = v
	}

	if v, ok := getEnvStr("AUTH_DEFAULT_ROLE"); ok {
		c.Auth.DefaultRole = v
	}
	if v, ok := getEnvDur("AUTH_OPERATION_TIMEOUT"); ok {
		c.Auth.OperationTimeout = v
	}
	if v, ok := getEnvInt("RESET_OTP_TTL_MINUTES"); ok {
		c.Auth.Reset.OTPTTLMinutes = v
	}
	if v, ok := getEnvInt("RESET_OTP_LENGTH"); ok {
		c.Auth.Reset.OTPLength = v
	}
	if v, ok := getEnvInt("RESET_DAILY_CAP"); ok {
		c.Auth.Reset.DailyCap = v
	}
	if v, ok := getEnvInt("RESET_MAX_ATTEMPTS"); ok {
		c.Auth.Reset.MaxAttempts = v
	}
	if v, ok := getEnvInt("PASSWORD_MIN_LENGTH"); ok {
		c.Security.PasswordPolicy.MinLength = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvDur("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}
	if v, ok := getEnvInt("RATE_FORGOT_LIMIT"); ok {
		c.Rate.Forgot.Limit = v
	}
	if v, ok := getEnvDur("RATE_FORGOT_WINDOW"); ok {
		c.Rate.Forgot.Window = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
		if c.Cache.Kind == "" {
			c.Cache.Kind = "redis"
		}
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	if v, ok := getEnvStr("EMAIL_PRODUCT_NAME"); ok {
		c.Email.ProductName = v
	}
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
	if v, ok := getEnvStr("METRICS_PATH"); ok {
		c.Metrics.Path = v
	}
}

// Validate checks values the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) must be at least 32 bytes"))
	}
	if c.JWT.AccessTTLMinutes < 0 || c.JWT.RefreshTTLDays < 0 {
		errs = append(errs, errors.New("jwt ttl values must be positive"))
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn (DATABASE_URL) is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q: want memory or postgres", c.Storage.Driver))
	}

	switch strings.ToLower(c.Cache.Kind) {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr (REDIS_ADDR) is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q: want memory or redis", c.Cache.Kind))
	}

	r := c.Auth.Reset
	if r.OTPLength < 4 || r.OTPLength > 10 {
		errs = append(errs, errors.New("auth.reset.otp_length must be between 4 and 10"))
	}
	if r.OTPTTLMinutes < 1 || r.MaxAttempts < 1 || r.DailyCap < 1 {
		errs = append(errs, errors.New("auth.reset ttl, daily_cap and max_attempts must be at least 1"))
	}
	if c.Security.PasswordPolicy.MinLength < 1 {
		errs = append(errs, errors.New("security.password_policy.min_length must be at least 1"))
	}
	if c.Auth.OperationTimeout < 0 {
		errs = append(errs, errors.New("auth.operation_timeout must not be negative"))
	}

	switch c.SMTP.TLS {
	case "auto", "starttls", "ssl", "none":
	default:
		errs = append(errs, fmt.Errorf("smtp.tls %q: want auto, starttls, ssl or none", c.SMTP.TLS))
	}
	if c.IsProd() && c.SMTP.InsecureSkipVerify {
		errs = append(errs, errors.New("smtp.insecure_skip_verify is not allowed in prod"))
	}

	return errors.Join(errs...)
}
