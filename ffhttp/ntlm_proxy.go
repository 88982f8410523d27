package ffhttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"

	ntlm "github.com/launchdarkly/go-ntlm-proxy-auth"
)

// NewNTLMProxyHTTPClientFactory returns a factory for *http.Client values that authenticate to an
// NTLM-protected HTTP proxy before forwarding each connection to its real destination. Used when
// the streaming/polling data sources must cross an enterprise NTLM proxy.
func NewNTLMProxyHTTPClientFactory(
	proxyURLString, username, password, domain string,
	transportOptions ...TransportOption,
) (func() *http.Client, error) {
	if proxyURLString == "" {
		return nil, fmt.Errorf("ffhttp: proxy URL is required")
	}
	if username == "" {
		return nil, fmt.Errorf("ffhttp: username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("ffhttp: password is required")
	}
	proxyURL, err := url.Parse(proxyURLString)
	if err != nil {
		return nil, fmt.Errorf("ffhttp: invalid proxy URL: %w", err)
	}

	transport, err := NewTransport(transportOptions...)
	if err != nil {
		return nil, err
	}
	var tlsConfig *tls.Config
	if transport.TLSClientConfig != nil {
		tlsConfig = transport.TLSClientConfig
	}

	baseDialer := &net.Dialer{}
	dialContext := ntlm.NewNTLMProxyDialContext(baseDialer, *proxyURL, username, password, domain, tlsConfig)

	return func() *http.Client {
		proxyTransport := &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialContext(ctx, network, addr)
			},
		}
		return &http.Client{Transport: proxyTransport}
	}, nil
}
