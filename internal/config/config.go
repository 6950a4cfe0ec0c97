package config

type Config interface {
	EnvConfig
	CorsConfig
	ServerConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Server
}

// New returns the dev backend configuration
func New() Config {
	return mainConfig{}
}

type clientConfig struct {
	EnvVars
	Client
}

// NewClient returns the configuration used by the CLI and library callers
func NewClient() interface {
	EnvConfig
	ClientConfig
} {
	return clientConfig{}
}
