package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "BOOKSTORE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvDBDSN  = "BOOKSTORE_DB_DSN"
	EnvDBHost = "BOOKSTORE_DB_HOST"
	EnvDBUser = "BOOKSTORE_DB_USER"
	EnvDBName = "BOOKSTORE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
