package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "graniteledger"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GRANITELEDGER_DB_DSN"
	EnvDBHost = "GRANITELEDGER_DB_HOST"
	EnvDBUser = "GRANITELEDGER_DB_USER"
	EnvDBName = "GRANITELEDGER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
