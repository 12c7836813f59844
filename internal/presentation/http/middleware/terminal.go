package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/application/service"
)

const (
	// TerminalHeader names the console terminal a request comes from
	TerminalHeader = "X-Terminal-ID"

	maxTerminalLength = 64
)

// TerminalMiddleware reads the terminal id from the request header and adds it
// to the context. Requests without one share the default terminal.
func TerminalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("terminal", NormalizeTerminal(c.GetHeader(TerminalHeader)))
		c.Next()
	}
}

// NormalizeTerminal trims the header value, keeps only [A-Za-z0-9_-] and
// limits its length.
func NormalizeTerminal(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if b.Len() >= maxTerminalLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return service.DefaultTerminal
	}
	return b.String()
}

// GetTerminal retrieves the terminal id from gin context
func GetTerminal(c *gin.Context) string {
	terminal, exists := c.Get("terminal")
	if !exists {
		return service.DefaultTerminal
	}
	id, ok := terminal.(string)
	if !ok || id == "" {
		return service.DefaultTerminal
	}
	return id
}
