package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	GCP       GCPConfig
	BigQuery  BigQueryConfig
	Shopify   ShopifyConfig
	AdsReport AdsReportConfig
	Pipeline  PipelineConfig
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
	Env          string `envconfig:"ATTRIBUTION_APP_ENV" required:"true"`
	Port         string `envconfig:"ATTRIBUTION_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ATTRIBUTION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATTRIBUTION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ATTRIBUTION_SERVICE_KIND" default:"attribution-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"ATTRIBUTION_DB_DSN"`
	Driver string `envconfig:"ATTRIBUTION_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATTRIBUTION_DB_HOST"`
	LegacyPort     int    `envconfig:"ATTRIBUTION_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATTRIBUTION_DB_USER"`
	LegacyPassword string `envconfig:"ATTRIBUTION_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATTRIBUTION_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATTRIBUTION_DB_SSLMODE" default:"require"`

	AutoMigrate bool `envconfig:"ATTRIBUTION_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"ATTRIBUTION_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ATTRIBUTION_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ATTRIBUTION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATTRIBUTION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATTRIBUTION_REDIS_URL"`
	Address      string        `envconfig:"ATTRIBUTION_REDIS_ADDR"`
	Password     string        `envconfig:"ATTRIBUTION_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATTRIBUTION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATTRIBUTION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATTRIBUTION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATTRIBUTION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATTRIBUTION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATTRIBUTION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ATTRIBUTION_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ATTRIBUTION_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ATTRIBUTION_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset     string        `envconfig:"ATTRIBUTION_BIGQUERY_DATASET" required:"true"`
	EventsTable string        `envconfig:"ATTRIBUTION_BIGQUERY_EVENTS_TABLE" required:"true"`
	Lookback    time.Duration `envconfig:"ATTRIBUTION_BIGQUERY_LOOKBACK" default:"48h"`
}

type ShopifyConfig struct {
	Domain      string        `envconfig:"ATTRIBUTION_SHOPIFY_DOMAIN" required:"true"`
	AccessToken string        `envconfig:"ATTRIBUTION_SHOPIFY_ACCESS_TOKEN" required:"true"`
	APIVersion  string        `envconfig:"ATTRIBUTION_SHOPIFY_API_VERSION" default:"2023-10"`
	Timeout     time.Duration `envconfig:"ATTRIBUTION_SHOPIFY_TIMEOUT" default:"30s"`
}

type AdsReportConfig struct {
	GA4PropertyID string `envconfig:"ATTRIBUTION_GA4_PROPERTY_ID"`
	AdsCSVPath    string `envconfig:"ATTRIBUTION_ADS_CSV_PATH"`
}

type PipelineConfig struct {
	Interval      time.Duration `envconfig:"ATTRIBUTION_PIPELINE_INTERVAL" default:"3m"`
	OrderLookback time.Duration `envconfig:"ATTRIBUTION_PIPELINE_ORDER_LOOKBACK" default:"24h"`
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
