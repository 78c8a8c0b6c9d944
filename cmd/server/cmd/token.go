package cmd

import (
	"fmt"
	"time"

	"github.com/sbms-academy/server/internal/testauth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenEmail   string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Sign an identity access token with IDENTITY_JWT_SECRET so the
visitor and staff endpoints can be exercised locally without the hosted
identity service. Refused when ENVIRONMENT=production.

Example:
  curl -H "Authorization: Bearer $(server token --user 7f1c...)" localhost:8080/api/auth/profile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if cfg.IsProduction() {
			return fmt.Errorf("token minting is disabled in production")
		}

		issuer, err := testauth.NewTokenIssuer(testauth.Config{
			Secret:  cfg.Identity.JWTSecret,
			Issuer:  cfg.Identity.Issuer,
			Subject: tokenSubject,
			Email:   tokenEmail,
			TTL:     tokenTTL,
		})
		if err != nil {
			return err
		}
		token, err := issuer.Token()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "user", "", "identity subject (user profile id)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
