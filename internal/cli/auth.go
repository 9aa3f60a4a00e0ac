package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account and session commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthMeCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthUpdateCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validation.LoginForm{Email: strings.TrimSpace(email), Password: password}
			if err := app.Validator.Struct(form); err != nil {
				return err
			}

			user, err := ws.Session.Login(cmd.Context(), form.Email, form.Password)
			if err != nil {
				if errors.Is(err, model.ErrUnauthorized) {
					return errors.New("invalid email or password")
				}
				return err
			}

			out.Print(*user)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var name, email, password, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				confirm = password
			}
			form := validation.RegisterForm{
				Name:     strings.TrimSpace(name),
				Email:    strings.TrimSpace(email),
				Password: password,
				Confirm:  confirm,
			}
			if err := app.Validator.Struct(form); err != nil {
				return err
			}

			user, err := ws.Session.Register(cmd.Context(), form.Input())
			if err != nil {
				return err
			}

			out.Print(*user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password: at least 6 characters with a letter and a number (required)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ws.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			user, err := ws.Session.FetchCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out.Print(*user)
			return nil
		},
	}
}

var permissions = []model.Permission{
	model.PermissionManageUsers,
	model.PermissionManageProfiles,
	model.PermissionManageContent,
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the saved session stands, without failing when logged out",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := SessionStatus{
				State:       guard.Resolve(ws.Subject()).String(),
				User:        ws.Session.User(),
				Profile:     ws.Active.Active(),
				Permissions: []model.Permission{},
			}
			for _, p := range permissions {
				if ws.Session.HasPermission(p) {
					status.Permissions = append(status.Permissions, p)
				}
			}
			out.Print(status)
			return nil
		},
	}
}

func newAuthUpdateCmd() *cobra.Command {
	var name, current, newPassword string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the account name or password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}

			form := validation.SettingsForm{
				Name:            strings.TrimSpace(name),
				CurrentPassword: current,
				NewPassword:     newPassword,
				Confirm:         newPassword,
			}
			if err := app.Validator.Struct(form); err != nil {
				return err
			}

			user, err := ws.Session.UpdateAccount(cmd.Context(), form.Update())
			if errors.Is(err, model.ErrNoChanges) {
				return errors.New("nothing to update: pass --name or --new-password")
			}
			if err != nil {
				return err
			}
			out.Print(*user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&current, "current-password", "", "Current password, required with --new-password")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password")

	return cmd
}
