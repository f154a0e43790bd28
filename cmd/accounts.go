package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ptmyrd/google-ads-mcp-server/internal/ads"
	"github.com/ptmyrd/google-ads-mcp-server/internal/google"
)

func newAccountsCmd() *cobra.Command {
	var (
		account      string
		authStrategy string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accessible Google Ads accounts",
		Long: `List all Google Ads accounts accessible to the cached token, including
sub-accounts under manager (MCC) accounts.

Requires GOOGLE_ADS_DEVELOPER_TOKEN and a completed login for the
chosen account (or another configured token strategy).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccounts(account, authStrategy, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name whose token to use")
	cmd.Flags().StringVar(&authStrategy, "auth-strategy", "", "Token strategy: file, refresh or relay. Inferred from the environment when empty.")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output accounts as JSON")

	return cmd
}

func runAccounts(account, authStrategy string, jsonOutput bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	adsConfig, err := ads.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid Ads API configuration: %w", err)
	}

	provider, err := google.NewProviderForStrategy(authStrategy)
	if err != nil {
		return fmt.Errorf("failed to create token provider: %w", err)
	}
	if !provider.HasTokenForAccount(account) {
		return fmt.Errorf("no token for account %q; run the login command first", account)
	}

	client := ads.NewClientForAccount(adsConfig, provider, account)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	accounts, err := client.ListAccounts(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if jsonOutput {
		out, err := json.MarshalIndent(accounts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printAccountsTable(accounts)
	return nil
}

func printAccountsTable(accounts []ads.Account) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER ID\tNAME\tCURRENCY\tTIME ZONE\tTYPE")
	for _, a := range accounts {
		name := a.DescriptiveName
		if name == "" {
			name = "-"
		}
		accountType := "client"
		if a.Manager {
			accountType = "manager"
		}
		indent := strings.Repeat("  ", int(a.Level))
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\n",
			indent, a.CustomerID, name, orDash(a.CurrencyCode), orDash(a.TimeZone), accountType)
	}
	_ = w.Flush()
	fmt.Printf("\n%d account(s)\n", len(accounts))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
