package server

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// AllowedOrigins restricts CORS and WebSocket origins. Empty
	// allows all origins.
	AllowedOrigins []string

	// TLS configures HTTPS.
	TLS TLSConfig
}

// TLSConfig holds TLS settings for the server.
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Port: 8080,
	}
}
