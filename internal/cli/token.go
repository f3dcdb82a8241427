package cli

import (
	"fmt"
	"time"

	"quizhunt-service/internal/auth"
	"quizhunt-service/internal/config"
	"quizhunt-service/internal/domain"

	"github.com/spf13/cobra"
)

// NewTokenCmd mints a bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a player or society",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			p := domain.Principal{ID: subject, Role: domain.Role(role)}
			if !p.Role.Valid() {
				return fmt.Errorf("role must be %q or %q", domain.RolePlayer, domain.RoleSociety)
			}
			tokens := auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			tok, err := tokens.Sign(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "player or society id")
	cmd.Flags().StringVar(&role, "role", string(domain.RolePlayer), "player or society")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
