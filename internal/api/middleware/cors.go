package middleware

import (
	"net/url"
	"strings"
	"time"

	"pantry-chef/internal/infrastructure/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// tunnelSuffixes are development tunneling services allowed in permissive
// mode.
var tunnelSuffixes = []string{
	".ngrok-free.app",
	".ngrok.io",
	".loca.lt",
	".trycloudflare.com",
}

// CORS resolves the Access-Control headers per origin. With a configured
// allow-list, matching is strict (exact or "*.suffix" wildcard). Without
// one, a permissive development matcher accepts localhost, private
// network ranges, the native app scheme and known tunneling domains.
// Preflight OPTIONS requests are short-circuited by the cors library.
func CORS(cfg *config.Config) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(origin, cfg)
		},
		AllowMethods:  []string{"POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "apikey", "X-App-Version", "X-Request-ID", "x-client-info"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        24 * time.Hour,
	})
}

// OriginAllowed reports whether origin may call the API.
func OriginAllowed(origin string, cfg *config.Config) bool {
	if origin == "" {
		return false
	}

	if len(cfg.CORS.AllowedOrigins) > 0 {
		for _, allowed := range cfg.CORS.AllowedOrigins {
			if suffix, ok := strings.CutPrefix(allowed, "*."); ok {
				if strings.HasSuffix(origin, "."+suffix) || strings.HasSuffix(origin, "://"+suffix) {
					return true
				}
				continue
			}
			if origin == allowed {
				return true
			}
		}
		return false
	}

	return devOriginAllowed(origin, cfg.CORS.NativeScheme)
}

func devOriginAllowed(origin, nativeScheme string) bool {
	if nativeScheme != "" && strings.HasPrefix(origin, nativeScheme) {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()

	if host == "localhost" || host == "127.0.0.1" {
		return true
	}

	if strings.HasPrefix(host, "192.168.") || strings.HasPrefix(host, "10.") {
		return true
	}
	// 172.16.0.0/12
	if rest, ok := strings.CutPrefix(host, "172."); ok {
		if octet, _, found := strings.Cut(rest, "."); found {
			switch octet {
			case "16", "17", "18", "19", "20", "21", "22", "23",
				"24", "25", "26", "27", "28", "29", "30", "31":
				return true
			}
		}
	}

	for _, suffix := range tunnelSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}

	return false
}
