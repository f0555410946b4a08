// Package httpx configures HTTP clients used to reach the platform API.
package httpx

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/proxy"

	"github.com/jfk9w/maxbot/internal/logx"
)

// NewClient creates an *http.Client from the config.
func NewClient(config TransportConfig) (*http.Client, error) {
	transport, err := ConfigureTransport(config)
	if err != nil {
		return nil, err
	}

	return &http.Client{Transport: transport}, nil
}

// ConfigureTransport creates a http.RoundTripper from the config.
func ConfigureTransport(config TransportConfig) (http.RoundTripper, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: time.Minute,
	}

	if config.MaxIdleConns > 0 {
		transport.MaxIdleConns = config.MaxIdleConns
	}

	if config.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = config.IdleConnTimeout
	}

	if config.TLSHandshakeTimeout > 0 {
		transport.TLSHandshakeTimeout = config.TLSHandshakeTimeout
	}

	if config.ResponseHeaderTimeout > 0 {
		transport.ResponseHeaderTimeout = config.ResponseHeaderTimeout
	}

	if config.Proxy != "" {
		if err := setProxy(transport, dialer, config.Proxy); err != nil {
			return nil, errors.Wrap(err, "configure proxy")
		}
	}

	var roundTripper http.RoundTripper = transport
	if config.Log != "" {
		roundTripper = &Logx{RoundTripper: roundTripper, Log: logx.Get(config.Log)}
	}

	return roundTripper, nil
}

func setProxy(transport *http.Transport, forward *net.Dialer, rawURL string) error {
	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(err, "parse url")
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
		return nil
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(proxyURL, forward)
		if err != nil {
			return err
		}

		transport.Proxy = nil
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}

		return nil
	default:
		return errors.Errorf("unsupported scheme %s", proxyURL.Scheme)
	}
}
