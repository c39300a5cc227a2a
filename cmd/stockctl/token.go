package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockwise/internal/middleware"
)

func tokenCmd() *cobra.Command {
	var (
		operatorID string
		name       string
		ttl        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator bearer token",
		Long: `Sign an operator access token with the API's JWT secret (--secret or
STOCKCTL_JWT_SECRET). Operators are managed elsewhere; this is for scripts and tests.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := viper.GetString("jwt_secret")
			if secret == "" {
				return fmt.Errorf("--secret or STOCKCTL_JWT_SECRET is required")
			}
			if operatorID == "" {
				return fmt.Errorf("--operator is required")
			}
			token, err := middleware.GenerateAccessToken(secret, operatorID, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "JWT signing secret")
	_ = viper.BindPFlag("jwt_secret", cmd.Flags().Lookup("secret"))
	cmd.Flags().StringVar(&operatorID, "operator", "", "operator ID")
	cmd.Flags().StringVar(&name, "name", "", "operator display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
