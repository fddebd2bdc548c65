package middleware

import (
	"crypto/subtle"
	"net/http"
	"tle_zone_dashboard/internal/common"
)

// WebhookSecret rejects requests whose X-Webhook-Secret header differs from
// secret. An empty secret disables the check.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := r.Header.Get("X-Webhook-Secret")
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid webhook secret")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
