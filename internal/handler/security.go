package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/sales-ledger/internal/domain/auth"
	"github.com/xenking/sales-ledger/pkg/httpmiddleware"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "X-API-Key"

type callerKey struct{}

// CallerFromContext returns the authenticated caller identity, if any.
func CallerFromContext(ctx context.Context) *auth.Caller {
	if c, ok := ctx.Value(callerKey{}).(*auth.Caller); ok {
		return c
	}
	return nil
}

// HashAPIKey computes the HMAC-SHA256 hex digest of key under pepper. The
// same derivation is used by the seed tool when provisioning keys.
func HashAPIKey(key string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// APIKeyAuth returns a middleware that authenticates requests via
// HMAC-SHA256 hashed API keys. The presented key is hashed, looked up, and
// compared in constant time; failures answer 401 without detail. The
// resulting caller identity is attached to the request context.
func APIKeyAuth(keys auth.Repository, pepper []byte) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if presented == "" {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			mac := hmac.New(sha256.New, pepper)
			mac.Write([]byte(presented))
			computed := mac.Sum(nil)

			caller, err := keys.FindByHash(r.Context(), hex.EncodeToString(computed))
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			// Constant-time comparison guards against timing side-channels
			// even though the lookup already succeeded: the stored hash could
			// differ from what we computed if the repository returned a
			// stale or wrong row.
			stored, err := hex.DecodeString(caller.KeyHash)
			if err != nil || subtle.ConstantTimeCompare(computed, stored) != 1 {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
