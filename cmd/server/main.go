package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonardcser/hi/internal/logger"
	"github.com/leonardcser/hi/internal/metrics"
	"github.com/leonardcser/hi/internal/tools"
	"github.com/leonardcser/hi/pkg/hi"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	log.Info("starting hi MCP server")

	m := metrics.New(nil)
	if addr := os.Getenv("HI_METRICS_ADDR"); addr != "" {
		go serveMetrics(addr)
	}

	opts, err := clientOptions(m)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		panic(err)
	}

	dir := defaultCacheDir()
	client, err := hi.New(dir, opts...)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Error("failed to open lookup cache")
		panic(err)
	}
	defer client.Close()
	log.WithField("dir", dir).Info("lookup cache opened")

	s := server.NewMCPServer(
		"Hi",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolLookup := mcp.NewTool("name-lookup",
		mcp.WithDescription(multiline(
			"Looks up the grammatical gender and salutation form of a Czech first name or surname",
			"\nFunctionality:",
			"- Takes a name and optional gender and type hints",
			"- Returns the record the hi.ondraplsek.cz service holds for the name",
			"- Returns \"No match\" when the service does not know the name",
			"\nUsage notes:",
			"- Names are trimmed and lowercased before lookup",
			"- Answers, including misses, are cached permanently on disk",
		)),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name to look up")),
		mcp.WithString("gender", mcp.Enum(string(hi.Male), string(hi.Female)), mcp.Description("Restrict the lookup to one gender")),
		mcp.WithString("type", mcp.Enum(string(hi.TypeName), string(hi.TypeSurname)), mcp.Description("Whether the name is a first name or a surname")),
	)
	s.AddTool(toolLookup, tools.NameLookupHandler(client))
	log.Info("registered name-lookup tool")

	log.Info("starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		log.WithError(err).Error("server error")
	}
}

// clientOptions builds the lookup client options from HI_TYPE and HI_BASE_URL.
func clientOptions(m *metrics.Metrics) ([]hi.Option, error) {
	t, err := hi.ParseNameType(os.Getenv("HI_TYPE"))
	if err != nil {
		return nil, fmt.Errorf("HI_TYPE: %w", err)
	}
	opts := []hi.Option{hi.WithMetrics(m), hi.WithDefaultType(t)}
	if u := os.Getenv("HI_BASE_URL"); u != "" {
		opts = append(opts, hi.WithBaseURL(u))
	}
	return opts, nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

func defaultCacheDir() string {
	if s := os.Getenv("HI_CACHE_DIR"); s != "" {
		return s
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "hi")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "hi")
}
