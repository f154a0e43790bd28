package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
	"github.com/ptmyrd/google-ads-mcp-server/internal/mcp/oauth"
)

const loginTimeout = 5 * time.Minute

func newLoginCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Ads access and cache a token locally",
		Long: `Run the installed-app OAuth flow: a local callback server is started,
the consent URL is printed, and after you approve access in the browser
the token is cached for the chosen account.

Requires GOOGLE_ADS_OAUTH_CONFIG_PATH to point at an OAuth client
secret file of type "Desktop app".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name to cache the token under")

	return cmd
}

type callbackResult struct {
	code string
	err  error
}

func runLogin(account string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, loginTimeout)
	defer cancelTimeout()

	cs, err := google.LoadClientSecret(os.Getenv("GOOGLE_ADS_OAUTH_CONFIG_PATH"))
	if err != nil {
		return err
	}

	// Loopback redirect per RFC 8252; the port is chosen by the OS.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start local callback server: %w", err)
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state, err := oauth.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("state mismatch in OAuth callback")}
			return
		}
		if errParam := q.Get("error"); errParam != "" {
			http.Error(w, "authorization failed: "+errParam, http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("authorization failed: %s", errParam)}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("missing authorization code in callback")}
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><h2>Authorization complete</h2>You can close this window and return to the terminal.</body></html>")
		results <- callbackResult{code: code}
	})

	httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = httpServer.Serve(listener)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	authURL := google.GetAuthURL(cs, redirectURL, state)
	fmt.Printf("Visit this URL to authorize Google Ads access for account %q:\n\n  %s\n\nWaiting for authorization...\n", account, authURL)

	select {
	case <-ctx.Done():
		return fmt.Errorf("authorization not completed: %w", ctx.Err())
	case result := <-results:
		if result.err != nil {
			return result.err
		}
		if err := google.SaveAuthCode(ctx, cs, redirectURL, result.code, account); err != nil {
			return err
		}
	}

	fmt.Printf("Authorization successful. Token cached for account %q.\n", account)
	return nil
}
