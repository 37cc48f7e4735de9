package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tgnotify/internal/infrastructure/auth"
	"tgnotify/internal/interfaces/cli/server"
)

var (
	env        string
	configFile string
	subject    string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin API token",
		Long:  `Sign an admin JWT with auth.admin_jwt_secret and print it to stdout.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "admin", "Token subject, recorded in admin audit logs")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.token_ttl)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := server.LoadConfig(configFile, env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lifetime := ttl
	if lifetime <= 0 {
		lifetime = cfg.Auth.TokenTTL
	}

	signed, err := Mint(auth.NewJWTService(cfg.Auth.AdminJWTSecret), subject, lifetime)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}

// Mint signs an admin token for subject.
func Mint(jwtService *auth.JWTService, subject string, ttl time.Duration) (string, error) {
	if !jwtService.Enabled() {
		return "", fmt.Errorf("auth.admin_jwt_secret is not set")
	}
	if subject == "" {
		return "", fmt.Errorf("subject must not be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	signed, err := jwtService.Generate(subject, auth.RoleAdmin, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
