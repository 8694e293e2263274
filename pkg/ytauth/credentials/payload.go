// Package credentials holds the captured credential payload and its
// output sinks: an indented JSON file, a shell env-var file, and the
// human-readable stdout rendering.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Env var names expected by the uploader service.
const (
	EnvClientID     = "YOUTUBE_CLIENT_ID"
	EnvClientSecret = "YOUTUBE_CLIENT_SECRET"
	EnvRefreshToken = "YOUTUBE_REFRESH_TOKEN"
)

// Payload is the credential set produced by one consent run. TokenExpiry
// is nil when the provider reports no expiry; it serializes as null.
type Payload struct {
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	RefreshToken string     `json:"refresh_token"`
	AccessToken  string     `json:"access_token"`
	TokenExpiry  *time.Time `json:"token_expiry"`
}

// MarshalIndented renders the payload as 2-space-indented JSON with a
// trailing newline, the format both the file sink and stdout use.
func (p Payload) MarshalIndented() ([]byte, error) {
	content, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return append(content, '\n'), nil
}

// WriteJSONFile writes the payload to path, creating parent directories
// and overwriting any existing file.
func WriteJSONFile(path string, p Payload) error {
	content, err := p.MarshalIndented()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// WriteEnvFile writes the three YOUTUBE_* assignment lines to path.
func WriteEnvFile(path string, p Payload) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create env file dir: %w", err)
	}
	content := fmt.Sprintf("%s=\"%s\"\n%s=\"%s\"\n%s=\"%s\"\n",
		EnvClientID, p.ClientID,
		EnvClientSecret, p.ClientSecret,
		EnvRefreshToken, p.RefreshToken,
	)
	return os.WriteFile(path, []byte(content), 0o600)
}

// ReadJSONFile loads a payload previously written by WriteJSONFile.
func ReadJSONFile(path string) (Payload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(content, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return p, nil
}

// PrintBanner writes the instructional rendering of the payload.
func PrintBanner(w io.Writer, p Payload) error {
	content, err := p.MarshalIndented()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Copy these values into your environment (store securely):")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, string(content))
	_, _ = fmt.Fprintln(w)
	_, err = fmt.Fprintf(w, "Export the %s, %s, and %s env vars before running the service.\n",
		EnvClientID, EnvClientSecret, EnvRefreshToken)
	return err
}

// Validate rejects payloads that cannot identify an application. A
// missing refresh token is allowed; Google omits it for grants made
// without offline access and downstream sinks write the empty value.
func (p Payload) Validate() error {
	if p.ClientID == "" || p.ClientSecret == "" {
		return errors.New("credentials missing client_id or client_secret")
	}
	return nil
}
