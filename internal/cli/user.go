package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"regnify/internal/config"
	"regnify/internal/domain"
	"regnify/internal/email/noop"
	"regnify/internal/notify"
	"regnify/internal/repository/postgres"
	"regnify/internal/service"
	"regnify/internal/session/memory"
)

// UserCmd manages user accounts directly against the database.
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			role, _ := cmd.Flags().GetString("role")

			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := postgres.NewDB(&cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			// Welcome emails are not sent from the CLI.
			dispatcher := notify.NewDispatcher(1, cfg.Notify.Timeout)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = dispatcher.Close(ctx)
			}()
			users := service.NewUserService(postgres.NewUserRepo(db), postgres.NewAuditRepo(db), memory.New(),
				noop.NewNoopSender(cfg.Email.FrontendURL), dispatcher)

			user, err := users.Create(cmd.Context(), service.CreateUserInput{
				Username:  args[0],
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
				Role:      domain.UserRole(role),
			}, service.Actor{Username: "invoicectl", Role: domain.RoleAdminModerator})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %s (%s) with role %s\n",
				color.New(color.FgGreen).Sprint("Created"), user.Username, user.ID, user.Role)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "initial password")
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	cmd.Flags().String("role", string(domain.RoleViewer), "ADMIN_MODERATOR, SUPER_USER or VIEWER")
	return cmd
}
