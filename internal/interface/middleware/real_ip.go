package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP resolves the client address behind the proxy chain and stores it
// under the "real_ip" context key. Rate limit keys and the login audit
// trail both read it. CF-Connecting-IP wins, then the left-most entry of
// X-Forwarded-For, then Gin's own resolution.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ip := parseIP(c.GetHeader("CF-Connecting-IP")); ip != "" {
			c.Set("real_ip", ip)
			c.Next()
			return
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := parseIP(first); ip != "" {
				c.Set("real_ip", ip)
				c.Next()
				return
			}
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
