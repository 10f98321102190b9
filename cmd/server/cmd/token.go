package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"virtualevents/config"
	"virtualevents/internal/adapters/auth"
	"virtualevents/internal/domain"
)

var (
	tokenUserID string
	tokenEmail  string
	tokenRole   string
	tokenExpiry time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local testing",
	Long: `Mint a JWT signed with JWT_SECRET for the given user id.

The user must exist in the running server for authenticated endpoints to
resolve it. Useful against a development server started with the same secret.

Example:
  server token --user-id 2b1f... --email alice@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		token, err := mintToken(cfg, tokenUserID, tokenEmail, tokenRole, tokenExpiry)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "subject user id (required)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", domain.RoleAttendee, "role claim (organizer or attendee)")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 0, "token lifetime (default: JWT_EXPIRY)")
}

func mintToken(cfg *config.Config, userID, email, role string, expiry time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("--user-id is required")
	}
	if role != domain.RoleAttendee && role != domain.RoleOrganizer {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if expiry <= 0 {
		expiry = cfg.JWTExpiry
	}
	return auth.NewJWTIssuer(cfg.JWTSecret).Issue(userID, email, role, expiry)
}
