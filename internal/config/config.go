package config

type Config interface {
	EnvConfig
	AzureConfig
	SessionConfig
	ProxyConfig
}

type mainConfig struct {
	EnvVars
	Azure
	Sessions
	Proxy
}

func New() Config {
	return mainConfig{}
}
