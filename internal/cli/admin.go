package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration commands (admin role only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the closest persistent pre-run
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return require(guard.Role(model.RoleAdmin))
		},
	}

	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminGamesCmd())
	cmd.AddCommand(newAdminImportCmd())
	cmd.AddCommand(newAdminReportCmd())

	return cmd
}

// Users

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users and their profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users with their profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := ws.Admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			out.Print(users)
			return nil
		},
	})
	cmd.AddCommand(newAdminUserCreateCmd())
	cmd.AddCommand(newAdminUserUpdateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ws.Admin.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("User %s deleted", args[0]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "role <id> <role>",
		Short: "Change a user's role: user, admin or owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := ws.Admin.ChangeRole(cmd.Context(), args[0], strings.ToLower(strings.TrimSpace(args[1])))
			if err != nil {
				return err
			}
			out.Print(*u)
			return nil
		},
	})
	cmd.AddCommand(newAdminAddProfileCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete-profile <profile-id>",
		Short: "Delete any user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ws.Admin.DeleteProfile(cmd.Context(), args[0]); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Profile %s deleted", args[0]))
			return nil
		},
	})

	return cmd
}

func newAdminUserCreateCmd() *cobra.Command {
	var form validation.UserForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Role = strings.ToLower(strings.TrimSpace(form.Role))
			u, err := ws.Admin.CreateUser(cmd.Context(), form)
			if err != nil {
				return err
			}
			out.Print(*u)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&form.Role, "role", string(model.RoleUser), "Role: user, admin or owner")

	return cmd
}

func newAdminUserUpdateCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := ws.Admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			var current *model.User
			for i := range users {
				if users[i].ID.String() == args[0] {
					current = &users[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("user %s not found", args[0])
			}

			form := validation.UserForm{Name: current.Name, Email: current.Email, Role: string(current.Role)}
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.Name = name
			}
			if flags.Changed("email") {
				form.Email = email
			}
			if flags.Changed("password") {
				form.Password = password
			}
			if flags.Changed("role") {
				form.Role = strings.ToLower(strings.TrimSpace(role))
			}

			u, err := ws.Admin.UpdateUser(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			out.Print(*u)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&role, "role", "", "New role")

	return cmd
}

func newAdminAddProfileCmd() *cobra.Command {
	var name, restriction string

	cmd := &cobra.Command{
		Use:   "add-profile <user-id>",
		Short: "Create a profile for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validation.ProfileForm{
				Name:        strings.TrimSpace(name),
				Restriction: strings.ToUpper(strings.TrimSpace(restriction)),
			}
			p, err := ws.Admin.CreateProfile(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			out.Print(*p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&restriction, "rating", string(model.RestrictionAdults), "Content allowed: KIDS or ADULTS")

	return cmd
}

// Games

func newAdminGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Manage the catalog",
	}

	cmd.AddCommand(newAdminGameListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ws.Admin.Game(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out.Print(GameDetails{ID: gameID(*g), Game: *g})
			return nil
		},
	})
	cmd.AddCommand(newAdminGameEditCmd(false))
	cmd.AddCommand(newAdminGameEditCmd(true))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ws.Admin.DeleteGame(cmd.Context(), args[0]); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Game %s deleted", args[0]))
			return nil
		},
	})

	return cmd
}

func newAdminGameListCmd() *cobra.Command {
	var page int
	var filter model.GameFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the whole catalog, unfiltered by content rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ws.Admin.Games(cmd.Context(), filter, page)
			if err != nil {
				return err
			}
			out.Print(AdminGames{Page: p.Number, TotalPages: p.TotalPages, Total: p.TotalItems, Games: p.Games})
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search by name")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "Only games of this genre")
	cmd.Flags().StringVar(&filter.Platform, "platform", "", "Only games on this platform")

	return cmd
}

// gameFlags are the editable game fields. Lists are comma separated.
type gameFlags struct {
	name, description, platforms, genres, esrb string
	released, image, website                   string
	rating                                     float64
	metacritic                                 int
}

func (f *gameFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Game name")
	fs.StringVar(&f.description, "description", "", "Description, at least 10 characters")
	fs.StringVar(&f.platforms, "platforms", "", "Comma separated platforms")
	fs.StringVar(&f.genres, "genres", "", "Comma separated genres")
	fs.StringVar(&f.esrb, "esrb", "", "ESRB rating: E, E10+, T or M")
	fs.StringVar(&f.released, "released", "", "Release date, YYYY-MM-DD")
	fs.Float64Var(&f.rating, "rating", 0, "Score from 0 to 5")
	fs.IntVar(&f.metacritic, "metacritic", 0, "Metacritic score from 0 to 100")
	fs.StringVar(&f.image, "image", "", "Background image URL")
	fs.StringVar(&f.website, "website", "", "Website URL")
}

// apply overlays the flags that were set onto form
func (f *gameFlags) apply(cmd *cobra.Command, form *validation.GameForm) {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("name", func() { form.Name = strings.TrimSpace(f.name) })
	set("description", func() { form.Description = strings.TrimSpace(f.description) })
	set("platforms", func() { form.Platforms = validation.SplitList(f.platforms) })
	set("genres", func() { form.Genres = validation.SplitList(f.genres) })
	set("esrb", func() { form.ESRBRating = strings.ToUpper(strings.TrimSpace(f.esrb)) })
	set("released", func() { form.Released = strings.TrimSpace(f.released) })
	set("rating", func() { form.Rating = f.rating })
	set("metacritic", func() {
		score := f.metacritic
		form.Metacritic = &score
	})
	set("image", func() { form.BackgroundImage = strings.TrimSpace(f.image) })
	set("website", func() { form.Website = strings.TrimSpace(f.website) })
}

// formFromGame fills a form with the current values of g
func formFromGame(g model.Game) validation.GameForm {
	form := validation.GameForm{
		Name:            g.Name,
		Description:     g.Description,
		Platforms:       g.Platforms,
		Genres:          g.Genres,
		Released:        g.Released,
		Metacritic:      g.Metacritic,
		BackgroundImage: g.BackgroundImage,
		Website:         g.Website,
	}
	form.ESRBRating, _ = g.ContentRating()
	if g.Rating != nil {
		form.Rating = *g.Rating
	}
	return form
}

func newAdminGameEditCmd(update bool) *cobra.Command {
	var flags gameFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a game to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form validation.GameForm
			flags.apply(cmd, &form)
			g, err := ws.Admin.CreateGame(cmd.Context(), form)
			if err != nil {
				return err
			}
			out.Print(GameDetails{ID: gameID(*g), Game: *g})
			return nil
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Edit a game; unset flags keep their value"
		cmd.Args = cobra.ExactArgs(1)
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			current, err := ws.Admin.Game(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := formFromGame(*current)
			flags.apply(cmd, &form)
			g, err := ws.Admin.UpdateGame(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			out.Print(GameDetails{ID: gameID(*g), Game: *g})
			return nil
		}
	}
	flags.register(cmd)

	return cmd
}

// Import and reports

func newAdminImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <count>",
		Short: "Import popular games from the external catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("count must be a whole number: %q", args[0])
			}
			result, err := ws.Admin.Import(cmd.Context(), validation.ImportForm{Count: count})
			if err != nil {
				return err
			}
			out.Print(*result)
			return nil
		},
	}
}

func newAdminReportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export every watchlist as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := ws.Admin.WatchlistReport(cmd.Context())
			if err != nil {
				return err
			}
			if file == "" {
				out.PrintRaw(report)
				return nil
			}
			if err := os.WriteFile(file, report, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			out.PrintMessage(fmt.Sprintf("Report written to %s", file))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write the report to this file instead of stdout")

	return cmd
}
