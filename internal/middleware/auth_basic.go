package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// Credentials guards the operator routes with HTTP Basic auth. An empty user
// or password disables the gate: every request is refused.
type Credentials struct {
	User string
	Pass string
}

func (c Credentials) Enabled() bool {
	return c.User != "" && c.Pass != ""
}

// Check reports whether r carries matching Basic credentials.
func (c Credentials) Check(r *http.Request) bool {
	if !c.Enabled() {
		return false
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return equalDigest(user, c.User) & equalDigest(pass, c.Pass) == 1
}

func equalDigest(a, b string) int {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:])
}

// AdminAuth lets requests with valid credentials through and hands the rest
// to deny after setting the WWW-Authenticate challenge.
func AdminAuth(realm string, creds Credentials, deny http.Handler) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds.Check(r) {
				next.ServeHTTP(w, r)
				return
			}
			if creds.Enabled() {
				w.Header().Set("WWW-Authenticate", challenge)
			}
			deny.ServeHTTP(w, r)
		})
	}
}
