package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/injaneity/ytauth/pkg/ytauth/credentials"
)

const googleTokenInfoURL = "https://www.googleapis.com/oauth2/v3/tokeninfo"

func NewVerifyCommand() *cobra.Command {
	var credentialsFile string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a captured refresh token",
		Long: "verify performs a refresh grant with the credentials written by --output\n" +
			"and introspects the minted access token against Google's tokeninfo endpoint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			payload, err := credentials.ReadJSONFile(credentialsFile)
			if err != nil {
				return err
			}
			if err := payload.Validate(); err != nil {
				return err
			}
			if payload.RefreshToken == "" {
				return errors.New("credentials file has no refresh_token")
			}
			return verifyPayload(cmd.Context(), rt.Writer(), payload, google.Endpoint.TokenURL, googleTokenInfoURL)
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "Path to a credentials JSON written by --output")
	_ = cmd.MarkFlagRequired("credentials")

	return cmd
}

type tokenInfo struct {
	Audience  string `json:"aud"`
	Scope     string `json:"scope"`
	ExpiresIn string `json:"expires_in"`
	ErrorDesc string `json:"error_description"`
}

func verifyPayload(ctx context.Context, w io.Writer, payload credentials.Payload, tokenURL, tokenInfoURL string) error {
	cfg := &oauth2.Config{
		ClientID:     payload.ClientID,
		ClientSecret: payload.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: payload.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("refresh grant failed: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Refresh grant succeeded. Access token expires at %s\n", token.Expiry.UTC().Format(time.RFC3339))

	var info tokenInfo
	resp, err := resty.New().R().
		SetContext(ctx).
		SetQueryParam("access_token", token.AccessToken).
		SetResult(&info).
		SetError(&info).
		Get(tokenInfoURL)
	if err != nil {
		return fmt.Errorf("tokeninfo request failed: %w", err)
	}
	if resp.IsError() {
		if info.ErrorDesc != "" {
			return fmt.Errorf("tokeninfo rejected the access token: %s", info.ErrorDesc)
		}
		return fmt.Errorf("tokeninfo returned %s", resp.Status())
	}
	if info.Scope != "" {
		_, _ = fmt.Fprintf(w, "Scopes: %s\n", info.Scope)
	}
	if info.Audience != "" {
		_, _ = fmt.Fprintf(w, "Audience: %s\n", info.Audience)
	}
	return nil
}
