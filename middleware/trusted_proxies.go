package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// ConfigureTrustedProxies makes c.ClientIP honour X-Forwarded-For and X-Real-IP only
// for requests arriving from the listed IPs or CIDRs. An empty list trusts no proxy.
func ConfigureTrustedProxies(r *gin.Engine, list string) error {
	var proxies []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return fmt.Errorf("invalid trusted proxies %q: %w", list, err)
	}
	return nil
}
