package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrUnauthenticated means the upstream provider rejected the credential
	ErrUnauthenticated = errors.New("credential rejected")
	// ErrReauthRequired means the upstream account is stale or deactivated
	// and the client must authenticate again from scratch
	ErrReauthRequired = errors.New("re-authentication required")
)

// Identity is the stable identity resolved from a provider credential
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier resolves a provider-issued ID token into an identity
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens against the identitytoolkit
// accounts:lookup endpoint
type FirebaseVerifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewFirebaseVerifier creates a verifier for the given lookup endpoint and
// API key
func NewFirebaseVerifier(endpoint, apiKey string) *FirebaseVerifier {
	return &FirebaseVerifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

// Verify resolves the token. An upstream 401 surfaces as ErrUnauthenticated;
// an upstream 403 surfaces as ErrReauthRequired so the handler can remap it
// to a 400 re-auth prompt.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	body, err := json.Marshal(lookupRequest{IDToken: idToken})
	if err != nil {
		return nil, err
	}

	endpoint := v.endpoint + "?key=" + url.QueryEscape(v.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrReauthRequired
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity lookup returned status %d", resp.StatusCode)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("failed to decode identity lookup response: %w", err)
	}
	if len(lookup.Users) == 0 || lookup.Users[0].LocalID == "" {
		return nil, ErrUnauthenticated
	}

	u := lookup.Users[0]
	return &Identity{UID: u.LocalID, Email: u.Email, Name: u.DisplayName}, nil
}
