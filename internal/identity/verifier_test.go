package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVerifier(t *testing.T) {
	t.Run("valid token resolves identity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub":"auth0|abc","email":"u@example.com","email_verified":true}`))
		}))
		defer srv.Close()

		v := NewHTTPVerifier(srv.URL, time.Second)
		ident, err := v.Verify(context.Background(), "Bearer good-token")
		require.NoError(t, err)
		require.NotNil(t, ident)
		assert.Equal(t, "auth0|abc", ident.Subject)
		assert.Equal(t, "u@example.com", ident.Email)
		assert.True(t, ident.EmailVerified)
	})

	t.Run("provider rejection means no identity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		v := NewHTTPVerifier(srv.URL, time.Second)
		ident, err := v.Verify(context.Background(), "Bearer expired")
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("malformed body means no identity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		v := NewHTTPVerifier(srv.URL, time.Second)
		ident, err := v.Verify(context.Background(), "Bearer x")
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("missing subject means no identity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email":"u@example.com","email_verified":true}`))
		}))
		defer srv.Close()

		v := NewHTTPVerifier(srv.URL, time.Second)
		ident, err := v.Verify(context.Background(), "Bearer x")
		assert.NoError(t, err)
		assert.Nil(t, ident)
	})

	t.Run("absent or malformed header means no identity", func(t *testing.T) {
		v := NewHTTPVerifier("http://127.0.0.1:0", time.Second)

		for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
			ident, err := v.Verify(context.Background(), header)
			assert.NoError(t, err)
			assert.Nil(t, ident)
		}
	})
}
