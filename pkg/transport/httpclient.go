package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/betscout/internal/logger"
)

// DefaultTimeout applies when NewHTTPClient is given no timeout
const DefaultTimeout = 30 * time.Second

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
)

// StatusError is a non-2xx reply from a remote server
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned status %d", e.URL, e.Code)
}

// caBundlePath is an optional extra CA bundle, e.g. for a corporate TLS proxy
func caBundlePath() string {
	if p := os.Getenv("BETSCOUT_CA_BUNDLE"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".ssh/zscaler_ca_bundle.pem")
}

// NewHTTPClient returns a client trusting the system roots plus the optional extra bundle
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}
	if pem, err := os.ReadFile(caBundlePath()); err == nil {
		if ok := rootCAs.AppendCertsFromPEM(pem); !ok {
			logger.Warn("Failed to append extra CA bundle")
		} else {
			logger.Debug("Added extra CA bundle to root CAs")
		}
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{RootCAs: rootCAs},
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 16,
		},
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// GetCustomHTTPClient returns the shared default client
func GetCustomHTTPClient() *http.Client {
	defaultClientOnce.Do(func() {
		defaultClient = NewHTTPClient(DefaultTimeout)
	})
	return defaultClient
}

// Fetch performs a GET and returns the decoded body. Compressed responses (gzip, deflate,
// brotli) are decoded transparently. A nil client uses the shared default.
func Fetch(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	if client == nil {
		client = GetCustomHTTPClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("User-Agent", "betscout/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	reader, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(data)
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Body: body}
	}
	return data, nil
}

// decodedBody wraps the response body according to its Content-Encoding
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "gzip":
		r, err := NewGzipReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return NewDeflateReader(resp.Body)
	case "br":
		return NewBrotliReader(resp.Body)
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	default:
		logger.Warn("Unknown content encoding:", enc)
		return io.NopCloser(resp.Body), nil
	}
}

// NewGzipReader creates a gzip reader from the provided io.ReadCloser
func NewGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewDeflateReader creates a deflate reader from the provided io.ReadCloser
func NewDeflateReader(r io.ReadCloser) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// NewBrotliReader creates a brotli reader from the provided io.ReadCloser
func NewBrotliReader(r io.ReadCloser) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
