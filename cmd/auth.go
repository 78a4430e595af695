package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/google"
)

func newAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account",
		Long: `Run the OAuth consent flow for --account and cache the token in the user
cache directory (override with HANDOFF_TOKEN_DIR). The OAuth client comes from
HANDOFF_GOOGLE_CREDENTIALS (client JSON file) or HANDOFF_GOOGLE_CLIENT_ID and
HANDOFF_GOOGLE_CLIENT_SECRET.

Not needed with --service-account-key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account := globals.Account
			if account == "" {
				account = google.DefaultAccount
			}

			if code == "" {
				url, err := google.GetAuthURLForAccount(account)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize account %q:\n\n  %s\n\nThen paste the authorization code: ", account, url)
				code, err = readCode(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code, skips the interactive prompt")
	return cmd
}

func readCode(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return "", fmt.Errorf("no authorization code given")
	}
	return code, nil
}
