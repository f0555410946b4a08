package httpx

import "time"

// TransportConfig allows to configure Transport via YAML.
type TransportConfig struct {

	// Proxy is the proxy URL. Supported schemes are http, https, socks5 and socks5h.
	// Environment proxy settings are used if Proxy is not set.
	Proxy string `yaml:"proxy"`

	// MaxIdleConns configures http.Transport. Default is 100.
	MaxIdleConns int `yaml:"maxIdleConns"`

	// IdleConnTimeout configures http.Transport. Default is 90 seconds.
	IdleConnTimeout time.Duration `yaml:"idleConnTimeout"`

	// TLSHandshakeTimeout configures http.Transport. Default is 10 seconds.
	TLSHandshakeTimeout time.Duration `yaml:"tlsHandshakeTimeout"`

	// ResponseHeaderTimeout configures http.Transport. Default is 1 minute.
	// It must exceed the long polling timeout.
	ResponseHeaderTimeout time.Duration `yaml:"responseHeaderTimeout"`

	// Log is the transport logger name. If Log is not set, requests and responses will not be logged.
	Log string `yaml:"log"`
}
