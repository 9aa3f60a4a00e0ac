package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Household profile commands",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileCreateCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	cmd.AddCommand(newProfileSelectCmd())
	cmd.AddCommand(newProfileCurrentCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the account's profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			profiles, err := ws.Profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			list := ProfileList{Profiles: profiles}
			if active := ws.Active.Active(); active != nil {
				list.Active = active.ID.String()
			}
			out.Print(list)
			return nil
		},
	}
}

func newProfileCreateCmd() *cobra.Command {
	var name, restriction string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			form := validation.ProfileForm{
				Name:        strings.TrimSpace(name),
				Restriction: strings.ToUpper(strings.TrimSpace(restriction)),
			}
			p, err := ws.Profiles.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			out.Print(*p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&restriction, "rating", string(model.RestrictionAdults), "Content allowed: KIDS or ADULTS")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var name, restriction string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a profile or change its content rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			current, err := ws.Profiles.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			form := validation.ProfileForm{Name: current.Name, Restriction: string(current.Restriction)}
			if cmd.Flags().Changed("name") {
				form.Name = strings.TrimSpace(name)
			}
			if cmd.Flags().Changed("rating") {
				form.Restriction = strings.ToUpper(strings.TrimSpace(restriction))
			}

			p, err := ws.Profiles.Update(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			out.Print(*p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New profile name")
	cmd.Flags().StringVar(&restriction, "rating", "", "Content allowed: KIDS or ADULTS")

	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile and its watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			if err := ws.Profiles.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Profile %s deleted", args[0]))
			return nil
		},
	}
}

func newProfileSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			p, err := ws.Profiles.Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out.Print(*p)
			return nil
		},
	}
}

func newProfileCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.LoggedIn()); err != nil {
				return err
			}
			active := ws.Active.Active()
			if active == nil {
				return errors.New("no profile selected")
			}
			out.Print(*active)
			return nil
		},
	}
}
