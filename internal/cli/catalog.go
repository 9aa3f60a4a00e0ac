package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/workspace"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog commands",
	}

	cmd.AddCommand(newCatalogBrowseCmd())

	return cmd
}

func newCatalogBrowseCmd() *cobra.Command {
	var page int
	var filter model.GameFilter
	var compact bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog as the active profile",
		Long: `Browse the catalog as the active profile.

Kids profiles only see games with an age-appropriate rating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := require(guard.AnyProfile()); err != nil {
				return err
			}

			v := ws.View(compact)
			v.SetFilter(model.GameFilter{
				Search:   strings.TrimSpace(filter.Search),
				Genre:    strings.TrimSpace(filter.Genre),
				Platform: strings.TrimSpace(filter.Platform),
			})
			v.SetPage(page)

			p, err := v.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not load games: %w", err)
			}
			if err := ws.SyncWatchlist(cmd.Context()); err != nil {
				app.Logger.Warn("failed to load watchlist", slog.String("error", err.Error()))
			}

			result := CatalogPage{
				Profile:    *ws.Active.Active(),
				Filter:     v.Filter(),
				Page:       p.Number,
				TotalPages: p.TotalPages,
				Total:      p.TotalItems,
				Kids:       v.Kids(),
				Games:      gameRows(ws, p.Games),
			}
			if s, ok := v.Superset(); ok {
				result.Truncated = s.Truncated
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search by name")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "Only games of this genre")
	cmd.Flags().StringVar(&filter.Platform, "platform", "", "Only games on this platform")
	cmd.Flags().BoolVar(&compact, "compact", false, fmt.Sprintf("Compact pages of %d games instead of %d", catalog.PageSizeCompact, catalog.PageSizeMain))

	return cmd
}

func gameRows(w *workspace.Workspace, games []model.Game) []GameRow {
	rows := make([]GameRow, 0, len(games))
	for _, g := range games {
		id, ok := model.ResolveGameIdentity(g)
		if !ok {
			continue
		}
		rows = append(rows, GameRow{ID: string(id), Game: g, Watched: w.Watchlist.Has(g)})
	}
	return rows
}
