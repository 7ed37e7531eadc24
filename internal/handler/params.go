package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// queryInt reads an optional integer query parameter
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// queryStringPtr returns nil for a missing or blank query parameter
func queryStringPtr(c echo.Context, name string) *string {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// queryList accepts both repeated and comma-separated values
func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
