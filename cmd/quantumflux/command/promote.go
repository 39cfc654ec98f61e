package command

import (
	"context"
	"fmt"
	"io"

	"quantumflux/database"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/http-api/repository"

	"github.com/spf13/cobra"
)

var promoteRole string

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Change the role of an existing account",
	Long: `Change the role of the account registered with <email>.
Only admins may open discussion threads or delete comments.

Example:
  quantumflux promote alice@example.com --role admin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		return promote(cmd.Context(), cmd.OutOrStdout(), repository.NewUserRepository(db), args[0], promoteRole)
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteRole, "role", models.RoleAdmin, "role to assign (user or admin)")
}

type roleUpdater interface {
	UpdateRoleByEmail(ctx context.Context, email, role string) error
}

func promote(ctx context.Context, out io.Writer, users roleUpdater, email, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return fmt.Errorf("unknown role %q: must be %q or %q", role, models.RoleUser, models.RoleAdmin)
	}
	if err := users.UpdateRoleByEmail(ctx, email, role); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("no account registered with %s", email)
		}
		return fmt.Errorf("update role: %w", err)
	}
	fmt.Fprintf(out, "✅ %s is now %s\n", email, role)
	return nil
}
