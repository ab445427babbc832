package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "RANGERSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv                 = "RANGERSHOP_APP_ENV"
	EnvPort                   = "RANGERSHOP_APP_PORT"
	EnvDBDSN                  = "RANGERSHOP_DB_DSN"
	EnvDBHost                 = "RANGERSHOP_DB_HOST"
	EnvDBUser                 = "RANGERSHOP_DB_USER"
	EnvDBName                 = "RANGERSHOP_DB_NAME"
	EnvRedisURL               = "RANGERSHOP_REDIS_URL"
	EnvJWTSecret              = "RANGERSHOP_JWT_SECRET"
	EnvJWTIssuer              = "RANGERSHOP_JWT_ISSUER"
	EnvJWTExpMins             = "RANGERSHOP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "RANGERSHOP_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
