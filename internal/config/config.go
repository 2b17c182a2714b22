package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio. Se construye una sola vez
// en el arranque (Load) y se inyecta por referencia en los constructores.
type Config struct {
	App struct {
		Env      string `yaml:"env"`       // dev | prod
		LogLevel string `yaml:"log_level"` // debug | info | warn | error
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		RootPath           string   `yaml:"root_path"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
		MaxUploadMB        int64    `yaml:"max_upload_mb"`
	} `yaml:"server"`

	Storage struct {
		Driver         string `yaml:"driver"` // postgres | memory
		DSN            string `yaml:"dsn"`
		MigrateOnStart bool   `yaml:"migrate_on_start"`
		InitRetries    int    `yaml:"init_retries"`
		InitRetryDelay string `yaml:"init_retry_delay"`
		Postgres       struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			CleanupInterval string `yaml:"cleanup_interval"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		SecretKey                string `yaml:"secret_key"`
		Algorithm                string `yaml:"algorithm"`
		AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
		RefreshTokenExpireDays   int    `yaml:"refresh_token_expire_days"`
	} `yaml:"jwt"`

	Auth struct {
		RefreshCookie struct {
			Name     string `yaml:"name"`
			Domain   string `yaml:"domain"`
			SameSite string `yaml:"same_site"`
		} `yaml:"refresh_cookie"`
	} `yaml:"auth"`

	Programs struct {
		Directory     string `yaml:"directory"`
		Workers       int    `yaml:"workers"`
		QueueSize     int    `yaml:"queue_size"`
		SessionCookie string `yaml:"session_cookie"`
	} `yaml:"programs"`

	Chat struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Model          string  `yaml:"model"`
		Temperature    float64 `yaml:"temperature"`
		Timeout        string  `yaml:"timeout"`
		RetrievalLimit int     `yaml:"retrieval_limit"`
	} `yaml:"chat"`

	Rate struct {
		Disabled    bool   `yaml:"disabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`
}

// Default devuelve una configuración con todos los defaults aplicados.
// Útil para tests y para `serve` sin archivo.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides por env
// y valida. Un path inexistente no es error: se usan defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", filepath.Base(path), err)
			}
		case os.IsNotExist(err):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyDefaults()
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Name == "" {
		c.App.Name = "wahlbot"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.RootPath == "" {
		c.Server.RootPath = "/api"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "120s" // chat puede tardar
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "20s"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 50
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.InitRetries == 0 {
		c.Storage.InitRetries = 5
	}
	if c.Storage.InitRetryDelay == "" {
		c.Storage.InitRetryDelay = "2s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "wahlbot:"
	}
	if c.Cache.Memory.CleanupInterval == "" {
		c.Cache.Memory.CleanupInterval = "1m"
	}
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = "HS256"
	}
	if c.JWT.AccessTokenExpireMinutes == 0 {
		c.JWT.AccessTokenExpireMinutes = 30
	}
	if c.JWT.RefreshTokenExpireDays == 0 {
		c.JWT.RefreshTokenExpireDays = 7
	}
	if c.Auth.RefreshCookie.Name == "" {
		c.Auth.RefreshCookie.Name = "refresh_token"
	}
	if c.Auth.RefreshCookie.SameSite == "" {
		c.Auth.RefreshCookie.SameSite = "Lax"
	}
	if c.Programs.Directory == "" {
		c.Programs.Directory = "./programs"
	}
	if c.Programs.Workers == 0 {
		c.Programs.Workers = 2
	}
	if c.Programs.QueueSize == 0 {
		c.Programs.QueueSize = 64
	}
	if c.Programs.SessionCookie == "" {
		c.Programs.SessionCookie = "session_id"
	}
	if c.Chat.BaseURL == "" {
		c.Chat.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Chat.Model == "" {
		c.Chat.Model = "openai/gpt-oss-120b"
	}
	if c.Chat.Timeout == "" {
		c.Chat.Timeout = "60s"
	}
	if c.Chat.RetrievalLimit == 0 {
		c.Chat.RetrievalLimit = 5
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 20
	}
}

// applyEnvOverrides aplica variables de entorno sobre el YAML.
// Los nombres siguen los del despliegue original (SECRET_KEY, ALGORITHM, ...).
func (c *Config) applyEnvOverrides() error {
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	setStr(&c.App.Env, "APP_ENV")
	setStr(&c.App.LogLevel, "LOG_LEVEL")
	setStr(&c.Server.Addr, "SERVER_ADDR")
	setStr(&c.Server.RootPath, "ROOT_PATH")
	setStr(&c.Storage.Driver, "STORAGE_DRIVER")
	setStr(&c.Storage.DSN, "DATABASE_URL")
	setStr(&c.Cache.Kind, "CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setStr(&c.JWT.SecretKey, "SECRET_KEY")
	setStr(&c.JWT.Algorithm, "ALGORITHM")
	setStr(&c.Programs.Directory, "PROGRAM_DIRECTORY")
	setStr(&c.Chat.APIKey, "CHAT_API_KEY", "GROQ_API_KEY")
	setStr(&c.Chat.BaseURL, "CHAT_BASE_URL")
	setStr(&c.Chat.Model, "CHAT_MODEL")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var out []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		c.Server.CORSAllowedOrigins = out
	}

	if v, ok, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES"); err != nil {
		return err
	} else if ok {
		c.JWT.AccessTokenExpireMinutes = v
	}
	if v, ok, err := getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS"); err != nil {
		return err
	} else if ok {
		c.JWT.RefreshTokenExpireDays = v
	}
	if v, ok, err := getEnvInt("PROGRAM_WORKERS"); err != nil {
		return err
	} else if ok {
		c.Programs.Workers = v
	}
	if v, ok := os.LookupEnv("STORAGE_MIGRATE_ON_START"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: STORAGE_MIGRATE_ON_START: %w", err)
		}
		c.Storage.MigrateOnStart = b
	}
	return nil
}

func getEnvInt(key string) (int, bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, true, nil
}

// SupportedAlgorithms lista los algoritmos simétricos aceptados para firmar tokens.
var SupportedAlgorithms = []string{"HS256", "HS384", "HS512"}

// Validate verifica la coherencia de la configuración.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return fmt.Errorf("config: jwt.secret_key (SECRET_KEY) is required")
	}
	algOK := false
	for _, a := range SupportedAlgorithms {
		if strings.EqualFold(c.JWT.Algorithm, a) {
			c.JWT.Algorithm = a
			algOK = true
			break
		}
	}
	if !algOK {
		return fmt.Errorf("config: unsupported jwt.algorithm %q", c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("config: jwt.access_token_expire_minutes must be > 0")
	}
	if c.JWT.RefreshTokenExpireDays <= 0 {
		return fmt.Errorf("config: jwt.refresh_token_expire_days must be > 0")
	}

	switch c.Storage.Driver {
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn (DATABASE_URL) is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			return fmt.Errorf("config: cache.redis.addr (REDIS_ADDR) is required for redis")
		}
	default:
		return fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind)
	}

	if c.Programs.Workers <= 0 {
		return fmt.Errorf("config: programs.workers must be > 0")
	}

	for name, d := range map[string]string{
		"server.read_timeout":                 c.Server.ReadTimeout,
		"server.write_timeout":                c.Server.WriteTimeout,
		"server.shutdown_timeout":             c.Server.ShutdownTimeout,
		"storage.init_retry_delay":            c.Storage.InitRetryDelay,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"cache.memory.cleanup_interval":       c.Cache.Memory.CleanupInterval,
		"chat.timeout":                        c.Chat.Timeout,
		"rate.window":                         c.Rate.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}

	if rp := c.Server.RootPath; rp != "" && rp != "/" && !strings.HasPrefix(rp, "/") {
		return fmt.Errorf("config: server.root_path must start with '/'")
	}
	return nil
}

// AccessTTL es la vida de un access token.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTTL es la vida de un refresh token (y el Max-Age de su cookie).
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpireDays) * 24 * time.Hour
}

// Duration parsea una duración ya validada; devuelve def si está vacía.
func Duration(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// IsProd indica si corremos en modo producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}
