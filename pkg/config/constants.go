package config

// EnvPrefix is passed to envconfig; explicit names on every field keep the
// effective variable names greppable.
const EnvPrefix = "ATTRIBUTION"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ATTRIBUTION_DB_DSN"
	EnvDBHost = "ATTRIBUTION_DB_HOST"
	EnvDBUser = "ATTRIBUTION_DB_USER"
	EnvDBName = "ATTRIBUTION_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
