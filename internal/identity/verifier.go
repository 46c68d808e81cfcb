package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Identity is the verified (subject, email, email_verified) triple obtained
// from the identity provider. The subject is external and immutable; the
// email is server-trusted because it comes from the provider, never from
// the browser.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verifier exchanges a bearer token for a verified identity. A nil identity
// with a nil error means "unauthenticated"; callers decide whether that is
// a 401 or merely the absence of optional auth.
type Verifier interface {
	Verify(ctx context.Context, authHeader string) (*Identity, error)
}

// HTTPVerifier validates tokens against the provider's userinfo endpoint.
// Nothing is cached; every request re-verifies.
type HTTPVerifier struct {
	userinfoURL string
	client      *http.Client
}

// NewHTTPVerifier creates a verifier for the given userinfo endpoint with a
// bounded timeout.
func NewHTTPVerifier(userinfoURL string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPVerifier{
		userinfoURL: userinfoURL,
		client:      &http.Client{Timeout: timeout},
	}
}

// Verify resolves the Authorization header to an identity. Any provider
// failure, non-success status, malformed body or missing subject/email is
// reported as "no identity", never as an error: an invalid token and an
// absent token look the same to callers.
func (v *HTTPVerifier) Verify(ctx context.Context, authHeader string) (*Identity, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, nil
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userinfoURL, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := v.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, nil
	}

	var id Identity
	if err := json.NewDecoder(res.Body).Decode(&id); err != nil {
		return nil, nil
	}
	if id.Subject == "" || id.Email == "" {
		return nil, nil
	}
	return &id, nil
}

var _ Verifier = (*HTTPVerifier)(nil)
