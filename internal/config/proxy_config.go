package config

type ProxyConfig interface {
	GetLocalAPIPath() string
	GetRemoteAPIURI() string
}

type Proxy struct{}

var _ ProxyConfig = Proxy{}

// GetLocalAPIPath is the path prefix under which protected requests are
// forwarded upstream.
func (Proxy) GetLocalAPIPath() string {
	return GetEnv("LOCAL_API_PATH", "/api")
}

func (Proxy) GetRemoteAPIURI() string {
	return GetEnv("REMOTE_API_URI", "")
}
