package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-ledger/internal/domain/auth"
	"github.com/xenking/sales-ledger/internal/memstore"
)

var testPepper = []byte("test-pepper")

func protectedEcho(t *testing.T, keys auth.Repository) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFromContext(r.Context())
		require.NotNil(t, caller)
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyAuth(keys, testPepper)(next)
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	keys := memstore.NewAPIKeys(HashAPIKey("secret-key", testPepper))
	srv := protectedEcho(t, keys)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set(APIKeyHeader, "secret-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	keys := memstore.NewAPIKeys(HashAPIKey("secret-key", testPepper))
	srv := protectedEcho(t, keys)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuth_WrongKey(t *testing.T) {
	keys := memstore.NewAPIKeys(HashAPIKey("secret-key", testPepper))
	srv := protectedEcho(t, keys)

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set(APIKeyHeader, "guessed-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// staleRepo returns a caller whose stored hash does not match any computed
// hash, exercising the constant-time comparison fallback.
type staleRepo struct{}

func (staleRepo) FindByHash(context.Context, string) (*auth.Caller, error) {
	return &auth.Caller{ID: "stale", KeyHash: "deadbeef"}, nil
}

func TestAPIKeyAuth_StaleStoredHash(t *testing.T) {
	srv := APIKeyAuth(staleRepo{}, testPepper)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set(APIKeyHeader, "whatever")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHashAPIKey_PepperChangesDigest(t *testing.T) {
	a := HashAPIKey("key", []byte("pepper-a"))
	b := HashAPIKey("key", []byte("pepper-b"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64, "hex-encoded SHA-256 digest")
}
