package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmanager/task-api/internal/core/service"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative helpers",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, or promote an existing one",
	RunE:  runAdminCreate,
}

var adminName, adminEmail, adminPassword string

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login email (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "password, at least 6 characters (required)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	if len(adminPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	ctx := cmd.Context()
	rt, err := loadRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer rt.close()

	user, err := service.NewUserService(rt.users, rt.log).EnsureAdmin(ctx, adminName, adminEmail, adminPassword)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s <%s>\n", user.ID, user.Email)
	return nil
}
