package security

import (
	"crypto/subtle"
	"net/http"
)

// HeaderAdminPIN carries the household admin PIN on mutating requests.
const HeaderAdminPIN = "X-Admin-PIN"

// ValidPIN compares got against the configured PIN in constant time.
func ValidPIN(configured, got string) bool {
	return subtle.ConstantTimeCompare([]byte(configured), []byte(got)) == 1
}

// RequirePIN rejects requests whose X-Admin-PIN header does not match pin
// before the wrapped handler reads anything from them.
func RequirePIN(pin string, onFail func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ValidPIN(pin, r.Header.Get(HeaderAdminPIN)) {
				if onFail != nil {
					onFail(w, r)
				} else {
					http.Error(w, "Invalid Admin PIN", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
