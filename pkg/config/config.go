package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "SOCISPHERE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced from tests and error messages.
const (
	EnvAppEnv                 = "SOCISPHERE_APP_ENV"
	EnvPort                   = "SOCISPHERE_APP_PORT"
	EnvDBDSN                  = "SOCISPHERE_DB_DSN"
	EnvDBHost                 = "SOCISPHERE_DB_HOST"
	EnvDBUser                 = "SOCISPHERE_DB_USER"
	EnvDBName                 = "SOCISPHERE_DB_NAME"
	EnvRedisURL               = "SOCISPHERE_REDIS_URL"
	EnvJWTSecret              = "SOCISPHERE_JWT_SECRET"
	EnvJWTIssuer              = "SOCISPHERE_JWT_ISSUER"
	EnvJWTExpMins             = "SOCISPHERE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SOCISPHERE_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Notifications NotificationsConfig
	SMTP          SMTPConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOCISPHERE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOCISPHERE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOCISPHERE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOCISPHERE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SOCISPHERE_DB_DSN"`

	LegacyHost     string `envconfig:"SOCISPHERE_DB_HOST"`
	LegacyPort     int    `envconfig:"SOCISPHERE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOCISPHERE_DB_USER"`
	LegacyPassword string `envconfig:"SOCISPHERE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOCISPHERE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOCISPHERE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOCISPHERE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOCISPHERE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOCISPHERE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOCISPHERE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOCISPHERE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOCISPHERE_REDIS_ADDR"`
	Password     string        `envconfig:"SOCISPHERE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOCISPHERE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOCISPHERE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOCISPHERE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOCISPHERE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOCISPHERE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOCISPHERE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SOCISPHERE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SOCISPHERE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SOCISPHERE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SOCISPHERE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SOCISPHERE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SOCISPHERE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SOCISPHERE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SOCISPHERE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SOCISPHERE_ARGON_KEY_LEN" default:"32"`
}

type NotificationsConfig struct {
	// RetentionDays bounds how long notifications are kept before the cleanup
	// sweep deletes them.
	RetentionDays int `envconfig:"SOCISPHERE_NOTIFICATION_RETENTION_DAYS" default:"30"`
	// ReminderAfterDays is the age an unread notification must reach before a
	// reminder email mentions it.
	ReminderAfterDays int `envconfig:"SOCISPHERE_NOTIFICATION_REMINDER_AFTER_DAYS" default:"2"`
	// NotifyingReactions lists the reaction kinds that produce a notification.
	// The reference behavior notifies on "like" only.
	NotifyingReactions []string `envconfig:"SOCISPHERE_NOTIFYING_REACTIONS" default:"like"`
}

type SMTPConfig struct {
	Host        string `envconfig:"SOCISPHERE_SMTP_HOST"`
	Port        int    `envconfig:"SOCISPHERE_SMTP_PORT" default:"587"`
	Username    string `envconfig:"SOCISPHERE_SMTP_USERNAME"`
	Password    string `envconfig:"SOCISPHERE_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"SOCISPHERE_SMTP_FROM_EMAIL" default:"noreply@socisphere.app"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SOCISPHERE_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"SOCISPHERE_CRON_LOCK_KEY" default:"cron-leader"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOCISPHERE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
