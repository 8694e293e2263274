package flow

import (
	"context"
	"fmt"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAuthority is the issuer used to discover authorization endpoints
// when the client secret descriptor does not carry them.
const DefaultAuthority = "https://accounts.google.com"

// LoadClientSecret reads an OAuth client secret descriptor (the JSON
// downloaded from the Google Cloud console, "installed" or "web" section)
// and builds an oauth2.Config requesting the given scopes. Descriptors
// that omit auth_uri or token_uri fall back to OIDC discovery against the
// authority.
func LoadClientSecret(ctx context.Context, path string, scopes []string, authority string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}
	if cfg.Endpoint.AuthURL != "" && cfg.Endpoint.TokenURL != "" {
		return cfg, nil
	}
	if authority == "" {
		authority = DefaultAuthority
	}
	provider, err := oidc.NewProvider(ctx, authority)
	if err != nil {
		return nil, fmt.Errorf("failed to discover authorization endpoints: %w", err)
	}
	endpoint := provider.Endpoint()
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint.AuthURL = endpoint.AuthURL
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint.TokenURL = endpoint.TokenURL
	}
	return cfg, nil
}
