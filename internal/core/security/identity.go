package security

import (
	"net/http"
	"strings"
)

// IdentityKey derives a coarse bucketing key for rate limiting from a
// request: the bearer token's first dot-delimited segment, then the
// x-client-info header, then the literal "anonymous". The token is never
// verified; this is an abuse-deterrence key, not an identity, and must
// not be used for any authorization decision.
func IdentityKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		if seg, _, found := strings.Cut(token, "."); found && seg != "" {
			return seg
		}
		if token != "" {
			return token
		}
	}

	if info := r.Header.Get("x-client-info"); info != "" {
		return info
	}

	return "anonymous"
}
