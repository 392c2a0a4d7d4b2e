package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is passed to envconfig; individual fields carry the full
	// variable name so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "ALIS_DB_DSN"
	EnvDBHost = "ALIS_DB_HOST"
	EnvDBUser = "ALIS_DB_USER"
	EnvDBName = "ALIS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Password PasswordConfig
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
	Env          string `envconfig:"ALIS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"ALIS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ALIS_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ALIS_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ALIS_DB_DSN"`

	LegacyHost     string `envconfig:"ALIS_DB_HOST"`
	LegacyPort     int    `envconfig:"ALIS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ALIS_DB_USER"`
	LegacyPassword string `envconfig:"ALIS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ALIS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ALIS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ALIS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ALIS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ALIS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALIS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ALIS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ALIS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ALIS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ALIS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ALIS_ARGON_KEY_LEN" default:"32"`
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
