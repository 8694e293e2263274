package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/injaneity/ytauth/pkg/ytauth/config"
	"github.com/injaneity/ytauth/pkg/ytauth/credentials"
	"github.com/injaneity/ytauth/pkg/ytauth/flow"
)

type captureOptions struct {
	clientSecret  string
	scopes        []string
	noLocalServer bool
	output        string
	envFile       string
	quiet         bool
}

func addCaptureFlags(cmd *cobra.Command, opts *captureOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.clientSecret, "client-secret", "", "Path to the OAuth client secret JSON downloaded from Google Cloud")
	f.StringArrayVar(&opts.scopes, "scopes", nil, "OAuth scopes to request (space separated, may be repeated)")
	f.BoolVar(&opts.noLocalServer, "no-local-server", false, "Use the console flow instead of a local web server if you cannot open a port")
	f.StringVar(&opts.output, "output", "", "Optional path to write the resulting credentials as JSON")
	f.StringVar(&opts.envFile, "env-file", "", "Optional path to write shell-friendly env vars (YOUTUBE_*)")
	f.BoolVar(&opts.quiet, "quiet", false, "Suppress human-readable instructions (useful for automation)")
}

func runCapture(cmd *cobra.Command, opts *captureOptions) error {
	rt, err := getRuntime(cmd)
	if err != nil {
		return err
	}
	resolved := rt.resolveCapture(cmd, *opts)

	if resolved.clientSecret == "" {
		return errors.New("--client-secret is required")
	}
	// Checked locally so a bad path fails before any network interaction.
	if _, err := os.Stat(resolved.clientSecret); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("client secret file not found: %s", resolved.clientSecret)
		}
		return err
	}

	flowOut := rt.Writer()
	if resolved.quiet {
		flowOut = cmd.ErrOrStderr()
	}
	result, err := rt.flow(cmd.Context(), flow.Options{
		ClientSecretFile: resolved.clientSecret,
		Scopes:           resolved.scopeList(),
		UseConsole:       resolved.noLocalServer,
		Output:           flowOut,
	})
	if err != nil {
		return err
	}

	payload := buildPayload(result)

	if resolved.output != "" {
		if err := credentials.WriteJSONFile(resolved.output, payload); err != nil {
			return err
		}
	}
	if resolved.envFile != "" {
		if err := credentials.WriteEnvFile(resolved.envFile, payload); err != nil {
			return err
		}
	}
	if !resolved.quiet {
		if err := credentials.PrintBanner(rt.Writer(), payload); err != nil {
			return err
		}
		if account := accountFromIDToken(result.IDToken); account != "" {
			_, _ = fmt.Fprintf(rt.Writer(), "Authorized account: %s\n", account)
		}
	}
	return nil
}

// resolveCapture fills unset options from the defaults file; flags win.
func (rt *runtimeState) resolveCapture(cmd *cobra.Command, o captureOptions) captureOptions {
	if rt.cfg == nil {
		return o
	}
	if o.clientSecret == "" {
		o.clientSecret = rt.cfg.ClientSecretFile
	}
	if !cmd.Flags().Changed("scopes") && len(rt.cfg.Scopes) > 0 {
		o.scopes = rt.cfg.Scopes
	}
	if !cmd.Flags().Changed("no-local-server") {
		o.noLocalServer = rt.cfg.NoLocalServer
	}
	if !cmd.Flags().Changed("quiet") {
		o.quiet = rt.cfg.Quiet
	}
	return o
}

// scopeList splits every --scopes value on whitespace, so both
// --scopes "a b" and repeated --scopes flags work.
func (o captureOptions) scopeList() []string {
	var scopes []string
	for _, entry := range o.scopes {
		scopes = append(scopes, strings.Fields(entry)...)
	}
	if len(scopes) == 0 {
		scopes = []string{config.DefaultScope}
	}
	return scopes
}

func buildPayload(result *flow.Result) credentials.Payload {
	payload := credentials.Payload{
		ClientID:     result.Config.ClientID,
		ClientSecret: result.Config.ClientSecret,
		RefreshToken: result.Token.RefreshToken,
		AccessToken:  result.Token.AccessToken,
	}
	if !result.Token.Expiry.IsZero() {
		expiry := result.Token.Expiry.UTC()
		payload.TokenExpiry = &expiry
	}
	return payload
}

// accountFromIDToken extracts a display identity from an unverified ID
// token. The token came straight from the provider over TLS; this is
// cosmetic output, not an auth decision.
func accountFromIDToken(raw string) string {
	if raw == "" {
		return ""
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return ""
	}
	for _, key := range []string{"email", "preferred_username", "sub"} {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
