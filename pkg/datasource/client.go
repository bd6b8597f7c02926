// Package datasource is the API-Football v3 client behind the analysis engine. Every request
// goes cache, rate limiter, circuit breaker, http, and identical in-flight requests are
// coalesced. There are no retries: a failed source degrades the analysis instead.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/richard-senior/betscout/pkg/transport"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://v3.football.api-sports.io"
	apiKeyHeader   = "x-apisports-key"

	// liveTTL caps caching of payloads that change around kickoff
	liveTTL = 10 * time.Minute
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ClientConfig configures a Client. Zero values select the defaults.
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	HTTPClient    *http.Client
	RatePerMinute int
	CacheTTL      time.Duration
	Cache         Cache
	Logger        *zap.SugaredLogger
}

// Client talks to API-Football. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	flight  singleflight.Group
	cache   Cache
	ttl     time.Duration
	log     *zap.SugaredLogger
}

// NewClient builds a client from cfg
func NewClient(cfg ClientConfig) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NopCache{}
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 300
	}
	burst := perMinute / 30
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst),
		cache:   cache,
		ttl:     cfg.CacheTTL,
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "api-football",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: isHealthyResponse,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// isHealthyResponse decides what the breaker counts as a provider failure. Client errors and
// cancellations say nothing about the provider's health.
func isHealthyResponse(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}

type envelope struct {
	Get      string              `json:"get"`
	Errors   jsoniter.RawMessage `json:"errors"`
	Results  int                 `json:"results"`
	Paging   paging              `json:"paging"`
	Response jsoniter.RawMessage `json:"response"`
}

type paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// empty reports a response with nothing in it, which the provider uses for unknown ids
func (e *envelope) empty() bool {
	r := strings.TrimSpace(string(e.Response))
	return r == "" || r == "[]" || r == "{}" || r == "null"
}

// providerErrors flattens the envelope errors, which arrive as [] when there are none and as
// an object of field -> message otherwise
func (e *envelope) providerErrors() []string {
	if len(e.Errors) == 0 {
		return nil
	}
	var asMap map[string]any
	if err := json.Unmarshal(e.Errors, &asMap); err == nil {
		out := make([]string, 0, len(asMap))
		for k, v := range asMap {
			out = append(out, fmt.Sprintf("%s: %v", k, v))
		}
		sort.Strings(out)
		return out
	}
	var asList []any
	if err := json.Unmarshal(e.Errors, &asList); err == nil {
		out := make([]string, 0, len(asList))
		for _, v := range asList {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	return []string{string(e.Errors)}
}

// get returns the envelope for endpoint and params, from the cache when possible
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) (*envelope, error) {
	key := endpoint
	if q := params.Encode(); q != "" {
		key += "?" + q
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	// The shared fetch outlives any one caller; the HTTP client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		return c.fetch(shared, endpoint, key, ttl)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*envelope), nil
	}
}

func (c *Client) fetch(ctx context.Context, endpoint, key string, ttl time.Duration) (*envelope, error) {
	start := time.Now()
	if raw, err := c.cache.Get(ctx, key); err == nil {
		if env, err := decodeEnvelope(raw); err == nil {
			observeCache(true)
			observeProvider(endpoint, "cached", start)
			return env, nil
		}
		c.log.Debugw("Discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Debugw("Cache lookup failed", "key", key, "error", err)
	}
	observeCache(false)

	if err := c.limiter.Wait(ctx); err != nil {
		observeProvider(endpoint, "unavailable", start)
		return nil, fmt.Errorf("%w: rate limit wait for %s: %v", ErrUnavailable, endpoint, err)
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return transport.Fetch(ctx, c.http, c.baseURL+key, map[string]string{apiKeyHeader: c.apiKey})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observeProvider(endpoint, "unavailable", start)
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
		}
		observeProvider(endpoint, "error", start)
		var se *transport.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", endpoint, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	raw := out.([]byte)

	env, err := decodeEnvelope(raw)
	if err != nil {
		observeProvider(endpoint, "error", start)
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if msgs := env.providerErrors(); len(msgs) > 0 {
		observeProvider(endpoint, "provider_error", start)
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, endpoint, strings.Join(msgs, "; "))
	}
	observeProvider(endpoint, "ok", start)
	c.log.Debugw("Provider request", "endpoint", key, "results", env.Results, "elapsed", time.Since(start))

	if ttl > 0 {
		if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
			c.log.Debugw("Cache store failed", "key", key, "error", err)
		}
	}
	return env, nil
}

func decodeEnvelope(raw []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// decode unmarshals the envelope response, mapping an empty response to ErrNotFound
func decode[T any](env *envelope, what string) (T, error) {
	var out T
	if env.empty() {
		return out, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err := json.Unmarshal(env.Response, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", what, err)
	}
	return out, nil
}

func (c *Client) liveTTL() time.Duration {
	if c.ttl < liveTTL {
		return c.ttl
	}
	return liveTTL
}
