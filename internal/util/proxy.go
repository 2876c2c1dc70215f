// Package util holds HTTP plumbing shared by the discovery adapters,
// the collector, and the link checker.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc returns a transport proxy function honoring the
// configured per-scheme proxies. With neither configured it defers to
// the standard proxy environment variables.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && httpsProxy != "":
			return url.Parse(httpsProxy)
		case httpProxy != "":
			return url.Parse(httpProxy)
		default:
			return http.ProxyFromEnvironment(req)
		}
	}
}
