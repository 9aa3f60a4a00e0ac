package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/services/guard"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game details commands",
	}

	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameCheckAgeCmd())

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game if the active profile may see it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.AnyProfile()); err != nil {
				return err
			}
			game, err := ws.Game(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// The server's verdict decides; a failed check shows nothing
			active := ws.Active.Active()
			allowed, err := ws.AgeGate.Check(cmd.Context(), *game, active)
			if err != nil {
				return fmt.Errorf("could not verify the age rating: %w", err)
			}
			if !allowed {
				return fmt.Errorf("this game is not available for the %s profile", active.Name)
			}

			if err := ws.SyncWatchlist(cmd.Context()); err != nil {
				app.Logger.Warn("failed to load watchlist", slog.String("error", err.Error()))
			}
			out.Print(GameDetails{ID: gameID(*game), Game: *game, Watched: ws.Watchlist.Has(*game)})
			return nil
		},
	}
}

func newGameCheckAgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-age <id>",
		Short: "Ask the server whether the active profile may see a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.AnyProfile()); err != nil {
				return err
			}
			game, err := ws.Game(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			active := ws.Active.Active()
			allowed, err := ws.AgeGate.Check(cmd.Context(), *game, active)
			if err != nil {
				return err
			}
			out.Print(AgeCheck{GameID: gameID(*game), ProfileID: active.ID.String(), Allowed: allowed})
			return nil
		},
	}
}

