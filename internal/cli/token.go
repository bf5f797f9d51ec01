package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DezMoon/habit-tracker/internal/core/services"
)

var ErrNoSecret = errors.New("JWT_SECRET (auth.secret) is not configured")

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := rootOpts.cfg.Auth
			if auth.Secret == "" {
				return ErrNoSecret
			}

			token, err := services.NewTokenService(auth.Secret, auth.Issuer, auth.Owner, auth.TokenTTL).GenerateToken()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
