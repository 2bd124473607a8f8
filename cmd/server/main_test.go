package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/hi/internal/metrics"
	"github.com/leonardcser/hi/pkg/hi"
)

func TestClientOptionsRejectsUnknownType(t *testing.T) {
	t.Setenv("HI_TYPE", "nickname")

	_, err := clientOptions(metrics.New(prometheus.NewRegistry()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HI_TYPE")
}

func TestClientOptionsFromEnv(t *testing.T) {
	var query atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"success":false}`)
	}))
	defer srv.Close()
	t.Setenv("HI_TYPE", "surname")
	t.Setenv("HI_BASE_URL", srv.URL)

	opts, err := clientOptions(metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	c, err := hi.New(t.TempDir(), opts...)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, hi.TypeSurname, c.Type())
	_, err = c.Lookup(context.Background(), "Novak")
	require.NoError(t, err)
	assert.Equal(t, "name=novak&type=surname", query.Load())
}
