// Package ffhttp builds the shared *http.Transport used by the streaming/polling data sources and
// the event sender: custom CA certificates, explicit proxy configuration, and optional NTLM proxy
// authentication.
package ffhttp

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// TransportOption configures NewTransport.
type TransportOption func(*transportConfig) error

type transportConfig struct {
	caCertPool *x509.CertPool
	proxyURL   *url.URL
}

// CACertOption adds a CA certificate (PEM-encoded) to the pool of certificates trusted for TLS
// connections, in addition to the system's default pool.
func CACertOption(certData []byte) TransportOption {
	return func(c *transportConfig) error {
		if c.caCertPool == nil {
			pool, err := x509.SystemCertPool()
			if err != nil || pool == nil {
				pool = x509.NewCertPool()
			}
			c.caCertPool = pool
		}
		if !c.caCertPool.AppendCertsFromPEM(certData) {
			return fmt.Errorf("ffhttp: invalid CA certificate data")
		}
		return nil
	}
}

// CACertFileOption is CACertOption reading the PEM data from a file.
func CACertFileOption(certFile string) TransportOption {
	return func(c *transportConfig) error {
		data, err := os.ReadFile(certFile)
		if err != nil {
			return fmt.Errorf("ffhttp: can't read CA certificate file: %w", err)
		}
		return CACertOption(data)(c)
	}
}

// ProxyOption sets an explicit proxy URL, overriding the HTTP_PROXY/HTTPS_PROXY environment
// variables that are used by default.
func ProxyOption(proxyURL url.URL) TransportOption {
	return func(c *transportConfig) error {
		c.proxyURL = &proxyURL
		return nil
	}
}

// NewTransport builds an *http.Transport with the given options applied. With no options, it uses
// the proxy from the environment and the system's TLS roots; unlike http.DefaultTransport, it
// sets no dialer, idle-connection or TLS-handshake timeouts.
func NewTransport(options ...TransportOption) (*http.Transport, error) {
	config := &transportConfig{}
	for _, o := range options {
		if err := o(config); err != nil {
			return nil, err
		}
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if config.proxyURL != nil {
		u := *config.proxyURL
		transport.Proxy = http.ProxyURL(&u)
	}
	if config.caCertPool != nil {
		transport.TLSClientConfig = &tls.Config{RootCAs: config.caCertPool, MinVersion: tls.VersionTLS12}
	}
	return transport, nil
}
