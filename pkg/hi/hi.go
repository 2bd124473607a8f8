// Package hi looks up the grammatical gender of first names and surnames
// through the hi.ondraplsek.cz service and keeps every answer in a local
// persistent cache, keyed by the request URL.
package hi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/leonardcser/hi/internal/cache"
	"github.com/leonardcser/hi/internal/metrics"
)

const (
	// DefaultBaseURL is the public lookup service endpoint.
	DefaultBaseURL = "http://hi.ondraplsek.cz"

	// RequestTimeout bounds each request made by the default transport.
	RequestTimeout = 15 * time.Second
	// MaxResponseSize is the largest response body accepted from the service.
	MaxResponseSize = 1 * 1024 * 1024 // 1MB

	cacheFile   = "hi.bbolt"
	cacheBucket = "lookups"
)

// NameType tells the service whether the name is a first name or a surname.
type NameType string

const (
	TypeName    NameType = "name"
	TypeSurname NameType = "surname"
)

// Gender narrows a lookup to one grammatical gender.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseNameType validates a type hint. The empty string means no hint.
func ParseNameType(s string) (NameType, error) {
	switch t := NameType(s); t {
	case "", TypeName, TypeSurname:
		return t, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}

// ParseGender validates a gender hint. The empty string means no hint.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case "", Male, Female:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// store is the persistent cache behind a Client.
type store interface {
	cache.KV
	Purge() error
	Len() (int, error)
	Close() error
}

// Client is a caching lookup client. It is safe for concurrent use.
type Client struct {
	http    Doer
	baseURL string
	store   store
	group   singleflight.Group
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu  sync.RWMutex
	typ NameType
}

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the default transport entirely.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithDefaultType sets the initial type hint applied to every lookup.
func WithDefaultType(t NameType) Option {
	return func(c *Client) { c.typ = t }
}

// WithBaseURL points the client at a different service endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithMetrics records cache and fetch metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New creates cacheDir if needed, opens the cache inside it and returns a
// ready client.
func New(cacheDir string, opts ...Option) (*Client, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	store, err := cache.Open(filepath.Join(cacheDir, cacheFile), cache.Options{Bucket: cacheBucket})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: RequestTimeout}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("github.com/leonardcser/hi/pkg/hi")
	}
	c.refreshEntries()
	return c, nil
}

// Close releases the cache file.
func (c *Client) Close() error {
	return c.store.Close()
}

// SetType changes the type hint used by subsequent lookups. The empty value
// removes it.
func (c *Client) SetType(t NameType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typ = t
}

// Type returns the current type hint.
func (c *Client) Type() NameType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typ
}

// Purge removes every cached answer.
func (c *Client) Purge() error {
	if err := c.store.Purge(); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	c.metrics.SetCacheEntries(0)
	return nil
}

// CacheLen returns the number of cached answers, negative ones included.
func (c *Client) CacheLen() (int, error) {
	return c.store.Len()
}

func (c *Client) refreshEntries() {
	if c.metrics == nil {
		return
	}
	if n, err := c.store.Len(); err == nil {
		c.metrics.SetCacheEntries(n)
	}
}
