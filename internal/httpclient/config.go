package httpclient

import "time"

// HTTPClientConfig holds configuration for HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	TLSHandshakeTimeout   time.Duration
	IdleConnTimeout       time.Duration
	ExpectContinueTimeout time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	MaxRedirects          int
	MaxBodySize           int64
	FollowRedirects       bool
	InsecureSkipVerify    bool
	EnableHTTP2           bool
	UserAgent             string
	CustomHeaders         map[string]string
}

// DefaultHTTPClientConfig returns sensible defaults for link checking
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       0,
		MaxRedirects:          10,
		MaxBodySize:           1024 * 1024,
		FollowRedirects:       true,
		InsecureSkipVerify:    false,
		EnableHTTP2:           true,
	}
}
