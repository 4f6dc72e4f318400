package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "quickplate"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "QUICKPLATE_DB_DSN"
	EnvDBHost = "QUICKPLATE_DB_HOST"
	EnvDBUser = "QUICKPLATE_DB_USER"
	EnvDBName = "QUICKPLATE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
