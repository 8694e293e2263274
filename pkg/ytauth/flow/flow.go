package flow

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
)

// OOBRedirectURL is the out-of-band redirect used by the console variant;
// the provider displays the authorization code instead of redirecting.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Options selects a consent variant and carries the test seams. Zero
// values mean: local server variant, os.Stdin, os.Stdout, system browser.
type Options struct {
	ClientSecretFile string
	Scopes           []string
	Authority        string
	UseConsole       bool

	Input       io.Reader
	Output      io.Writer
	OpenBrowser func(url string) error
}

// Result is what a completed consent flow hands back to the caller.
type Result struct {
	Config  *oauth2.Config
	Token   *oauth2.Token
	IDToken string
}

func (o *Options) writer() io.Writer {
	if o.Output != nil {
		return o.Output
	}
	return os.Stdout
}

func (o *Options) reader() io.Reader {
	if o.Input != nil {
		return o.Input
	}
	return os.Stdin
}

func (o *Options) browser() func(string) error {
	if o.OpenBrowser != nil {
		return o.OpenBrowser
	}
	return openBrowser
}

// Login loads the client secret descriptor and runs the configured
// consent variant. Failures from the exchange propagate untouched.
func Login(ctx context.Context, opts Options) (*Result, error) {
	cfg, err := LoadClientSecret(ctx, opts.ClientSecretFile, opts.Scopes, opts.Authority)
	if err != nil {
		return nil, err
	}
	if opts.UseConsole {
		return ConsoleLogin(ctx, cfg, opts)
	}
	return LocalServerLogin(ctx, cfg, opts)
}

// LocalServerLogin binds an ephemeral loopback port, opens the browser to
// the consent page and blocks until the provider redirects back with an
// authorization code, then exchanges it.
func LocalServerLogin(ctx context.Context, cfg *oauth2.Config, opts Options) (*Result, error) {
	codeVerifier, codeChallenge, err := newPKCEPair()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer func() {
		_ = listener.Close()
	}()

	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state, err := randomToken(24)
	if err != nil {
		return nil, err
	}
	authURL := cfg.AuthCodeURL(state, consentAuthOptions(codeChallenge)...)

	resultCh := make(chan *Result, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/callback" {
				http.NotFound(w, r)
				return
			}
			if r.URL.Query().Get("state") != state {
				errCh <- errors.New("invalid state in callback")
				http.Error(w, "invalid state", http.StatusBadRequest)
				return
			}
			if errStr := r.URL.Query().Get("error"); errStr != "" {
				errCh <- fmt.Errorf("authorization denied: %s", errStr)
				http.Error(w, "authorization denied", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				errCh <- errors.New("missing code in callback")
				http.Error(w, "missing code", http.StatusBadRequest)
				return
			}
			token, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
			if err != nil {
				errCh <- fmt.Errorf("token exchange failed: %w", err)
				http.Error(w, "token exchange failed", http.StatusInternalServerError)
				return
			}
			idToken, _ := token.Extra("id_token").(string)
			_, _ = fmt.Fprintln(w, "Authorization received. You can close this window.")
			resultCh <- &Result{Config: cfg, Token: token, IDToken: idToken}
		}),
	}

	go func() {
		_ = server.Serve(listener)
	}()

	_, _ = fmt.Fprintf(opts.writer(), "Open the following URL in your browser:\n%s\n", authURL)
	_ = opts.browser()(authURL)

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil, ctx.Err()
	case err := <-errCh:
		_ = server.Close()
		return nil, err
	case result := <-resultCh:
		_ = server.Close()
		return result, nil
	}
}

// ConsoleLogin prints the consent URL and blocks on a pasted
// authorization code, for environments where no local port can be bound.
func ConsoleLogin(ctx context.Context, cfg *oauth2.Config, opts Options) (*Result, error) {
	codeVerifier, codeChallenge, err := newPKCEPair()
	if err != nil {
		return nil, err
	}

	cfg.RedirectURL = OOBRedirectURL
	authURL := cfg.AuthCodeURL("", consentAuthOptions(codeChallenge)...)

	w := opts.writer()
	_, _ = fmt.Fprintf(w, "Open the following URL in your browser:\n%s\n", authURL)
	_, _ = fmt.Fprint(w, "Paste the authorization code: ")

	code, err := readAuthCode(opts.reader())
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	idToken, _ := token.Extra("id_token").(string)
	return &Result{Config: cfg, Token: token, IDToken: idToken}, nil
}

// consentAuthOptions requests offline access with a forced consent
// screen so Google issues a refresh token even for repeat grants.
func consentAuthOptions(codeChallenge string) []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}
}

// readAuthCode accepts either a bare code or a pasted redirect URL.
func readAuthCode(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no authorization code provided")
	}
	if parsed, err := url.Parse(line); err == nil && parsed.Query().Get("code") != "" {
		return parsed.Query().Get("code"), nil
	}
	return line, nil
}

func newPKCEPair() (string, string, error) {
	verifier, err := randomToken(32)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
