package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/services/watchlist"
)

func newWatchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Watchlist commands for the active profile",
	}

	cmd.AddCommand(newWatchlistListCmd())
	cmd.AddCommand(newWatchlistMutateCmd("add", "Save a game to the watchlist"))
	cmd.AddCommand(newWatchlistMutateCmd("remove", "Take a game off the watchlist"))
	cmd.AddCommand(newWatchlistMutateCmd("toggle", "Add a game when it is not saved, remove it when it is"))

	return cmd
}

func newWatchlistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.AnyProfile()); err != nil {
				return err
			}
			if err := ws.SyncWatchlist(cmd.Context()); err != nil {
				return fmt.Errorf("could not load the watchlist: %w", err)
			}
			out.Print(Watchlist{Profile: *ws.Active.Active(), Games: gameRows(ws, ws.Watchlist.Games())})
			return nil
		},
	}
}

func newWatchlistMutateCmd(op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op + " <game-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.AnyProfile()); err != nil {
				return err
			}
			ctx := cmd.Context()
			id := args[0]
			if err := ws.SyncWatchlist(ctx); err != nil {
				return fmt.Errorf("could not load the watchlist: %w", err)
			}

			var outcome watchlist.Outcome
			var err error
			switch op {
			case "remove":
				outcome, err = ws.Watchlist.Remove(ctx, id)
			default:
				game, gerr := ws.Game(ctx, id)
				if gerr != nil {
					return gerr
				}
				id = gameID(*game)
				if op == "add" {
					outcome, err = ws.Watchlist.Add(ctx, *game)
				} else {
					outcome, err = ws.Watchlist.Toggle(ctx, *game)
				}
			}

			// Duplicates and already removed games are notices, not failures
			if err != nil && outcome.Notice.Level == model.NoticeError {
				return errors.New(outcome.Notice.Message)
			}
			out.Print(WatchResult{
				GameID:  id,
				Watched: outcome.Present,
				Level:   string(outcome.Notice.Level),
				Message: outcome.Notice.Message,
			})
			return nil
		},
	}
}
