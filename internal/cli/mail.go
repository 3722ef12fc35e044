package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/mail"
)

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailAuthCmd)
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail backend operations",
}

var mailAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail access and cache the OAuth token",
	Long: "Prints the consent URL for the OAuth client in mail.credentials_file,\n" +
		"reads the authorization code from stdin, and writes the token to mail.token_file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		oc, err := mail.OAuthConfig(cfg.Mail.CredentialsFile)
		if err != nil {
			return err
		}
		tok, err := mail.Authorize(cmd.Context(), oc, os.Stdin, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := mail.SaveToken(cfg.Mail.TokenFile, tok); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Mail.TokenFile)
		return nil
	},
}
