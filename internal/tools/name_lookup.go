package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/leonardcser/hi/pkg/hi"
)

// NameLookupHandler returns the MCP tool handler for the "name-lookup" tool.
func NameLookupHandler(client *hi.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		g, err := hi.ParseGender(req.GetString("gender", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := hi.ParseNameType(req.GetString("type", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var opts []hi.LookupOption
		if g != "" {
			opts = append(opts, hi.WithGender(g))
		}
		if t != "" {
			opts = append(opts, hi.WithType(t))
		}

		r, err := client.Lookup(ctx, name, opts...)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(FormatResult(name, r)), nil
	}
}

// FormatResult renders a lookup result as plain text. Object records become
// one "key: value" line per field in the order the service sent them.
func FormatResult(name string, r hi.Result) string {
	if !r.Found() {
		return fmt.Sprintf("No match for %q.", strings.TrimSpace(name))
	}
	v := gjson.ParseBytes(r.Raw())
	if !v.IsObject() {
		return r.String()
	}
	var sb strings.Builder
	v.ForEach(func(key, value gjson.Result) bool {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(key.String())
		sb.WriteString(": ")
		sb.WriteString(value.String())
		return true
	})
	if sb.Len() == 0 {
		return "Match with no details."
	}
	return sb.String()
}
