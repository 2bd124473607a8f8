package hi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leonardcser/hi/internal/cache"
)

type query struct {
	typ    NameType
	gender Gender
}

// LookupOption adjusts a single lookup.
type LookupOption func(*query)

// WithGender restricts the lookup to one gender.
func WithGender(g Gender) LookupOption {
	return func(q *query) { q.gender = g }
}

// WithType overrides the client's type hint for one lookup.
func WithType(t NameType) LookupOption {
	return func(q *query) { q.typ = t }
}

// LookupMale is Lookup restricted to male names.
func (c *Client) LookupMale(ctx context.Context, name string) (Result, error) {
	return c.Lookup(ctx, name, WithGender(Male))
}

// LookupFemale is Lookup restricted to female names.
func (c *Client) LookupFemale(ctx context.Context, name string) (Result, error) {
	return c.Lookup(ctx, name, WithGender(Female))
}

// Lookup returns the service's answer for name, asking the service only when
// the cache has no answer for the exact request URL yet. A miss on the service
// side comes back as NotFound and is cached like any other answer.
//
// Concurrent lookups of the same URL share a single request. The request is
// detached from any one caller's cancellation; each caller stops waiting when
// its own ctx is done.
func (c *Client) Lookup(ctx context.Context, name string, opts ...LookupOption) (Result, error) {
	q := query{typ: c.Type()}
	for _, opt := range opts {
		opt(&q)
	}
	u := BuildURL(c.baseURL, Normalize(name), q.typ, q.gender)

	ctx, span := c.tracer.Start(ctx, "hi.Lookup", trace.WithAttributes(attribute.String("hi.url", u)))
	defer span.End()

	if r, ok := c.load(u); ok {
		c.metrics.RecordCacheHit()
		span.SetAttributes(attribute.Bool("hi.cache_hit", true))
		return r, nil
	}
	span.SetAttributes(attribute.Bool("hi.cache_hit", false))

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(u, func() (any, error) {
		// Another flight may have stored the answer between our load and now.
		if r, ok := c.load(u); ok {
			c.metrics.RecordCacheHit()
			return r, nil
		}
		c.metrics.RecordCacheMiss()
		return c.fetchAndStore(flightCtx, u)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = &LookupError{Stage: StageFetch, URL: u, Err: ctx.Err()}
	}
	if res.Err != nil {
		var le *LookupError
		if errors.As(res.Err, &le) {
			c.metrics.RecordError(string(le.Stage))
		}
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		return NotFound, res.Err
	}
	return res.Val.(Result), nil
}

func (c *Client) load(key string) (Result, bool) {
	b, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.WithError(err).WithField("url", key).Warn("cache read failed, treating as miss")
		}
		return NotFound, false
	}
	log.WithField("url", key).Debug("cache hit")
	return decodeResult(b), true
}

func (c *Client) fetchAndStore(ctx context.Context, u string) (Result, error) {
	start := time.Now()
	data, err := c.FetchURL(ctx, u)
	c.metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return NotFound, err
	}

	doc, err := ParseJSON(data)
	if err == nil {
		var r Result
		if r, err = Extract(doc); err == nil {
			if perr := c.store.Put(u, r.encode()); perr != nil {
				log.WithError(perr).WithField("url", u).Warn("cache write failed")
			} else {
				c.refreshEntries()
			}
			log.WithFields(log.Fields{"url": u, "found": r.Found()}).Debug("fetched")
			return r, nil
		}
	}

	var le *LookupError
	if errors.As(err, &le) && le.URL == "" {
		le.URL = u
	}
	return NotFound, err
}

// Normalize repairs invalid UTF-8, trims surrounding whitespace and lowercases
// name. The result is what goes into the request URL.
func Normalize(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = strings.TrimSpace(name)
	// Casers carry state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(name)
}

// BuildURL assembles the request URL. The parameter order is fixed because the
// URL doubles as the cache key. Empty type and gender are left out.
func BuildURL(base, name string, t NameType, g Gender) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("?name=")
	sb.WriteString(queryEscape(name))
	if t != "" {
		sb.WriteString("&type=")
		sb.WriteString(queryEscape(string(t)))
	}
	if g != "" {
		sb.WriteString("&gender=")
		sb.WriteString(queryEscape(string(g)))
	}
	return sb.String()
}

// queryEscape is url.QueryEscape with "~" escaped too, which keeps keys
// identical to the ones form-encoding clients of the service produce.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "~", "%7E")
}

// FetchURL performs a GET against rawURL with the configured transport and
// returns the body. Every failure, including a non-2xx status, is a
// *LookupError with Stage StageFetch.
func (c *Client) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	fail := func(err error) error {
		return &LookupError{Stage: StageFetch, URL: rawURL, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fail(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fail(err)
	}
	if len(data) > MaxResponseSize {
		return nil, fail(errResponseTooLarge)
	}
	return data, nil
}

// ParseJSON parses a response body. Malformed JSON is a *LookupError with
// Stage StageParse.
func ParseJSON(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &LookupError{Stage: StageParse, Err: fmt.Errorf("%w: %q", errMalformedJSON, truncate(data, 64))}
	}
	return gjson.ParseBytes(data), nil
}

// Extract picks the answer out of a parsed response: the first element of
// results when success is true, NotFound otherwise. A successful response with
// no results is an error wrapping ErrNoResults.
func Extract(doc gjson.Result) (Result, error) {
	if !doc.Get("success").Bool() {
		return NotFound, nil
	}
	first := doc.Get("results.0")
	if !first.Exists() {
		return NotFound, &LookupError{Stage: StageParse, Err: ErrNoResults}
	}
	return Result{raw: []byte(first.Raw)}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
