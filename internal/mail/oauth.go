package mail

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scopes requested for the monitoring account.
var Scopes = []string{gmail.GmailReadonlyScope, gmail.GmailSendScope}

// OAuthConfig reads a Google "installed app" client secret file.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("mail: read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("mail: parse credentials: %w", err)
	}
	return cfg, nil
}

// LoadToken reads a cached OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mail: read token (run `trustwatch mail auth` first): %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("mail: parse token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mail: create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("mail: write token: %w", err)
	}
	return os.Rename(tmp, path)
}

// Authorize runs the interactive consent flow: it prints the consent URL
// to out, reads the authorization code from in, and exchanges it.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("trustwatch", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this URL in a browser and grant access:\n\n  %s\n\nPaste the authorization code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("mail: read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("mail: empty authorization code")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("mail: exchange authorization code: %w", err)
	}
	return tok, nil
}

// NewGmailFromFiles builds a Gmail client from a client secret file and a
// cached token. The token refreshes in memory as needed.
func NewGmailFromFiles(ctx context.Context, credentialsFile, tokenFile, from string) (*Gmail, error) {
	cfg, err := OAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	client := cfg.Client(ctx, tok)
	return NewGmail(ctx, from, option.WithHTTPClient(client))
}
