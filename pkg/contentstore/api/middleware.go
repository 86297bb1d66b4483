package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/edupath/content-store/pkg/contentstore"
)

// RequireAdminToken guards the write endpoints with the static admin bearer
// token. The comparison is constant-time; a missing or wrong token gets a
// 401 before any handler runs, so an unauthorized request can never mutate
// the store.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				writeStoreError(w, r, contentstore.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	return token, token != ""
}
