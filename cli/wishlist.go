package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	wishlistKind string
	wishlistSort string
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Wishlist commands",
	Long:  `View the ranked wishlist and upcoming releases, and duel wishlist entries.`,
}

var wishlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your ranked wishlist",
	Long:  `Display released wishlist artifacts of one kind, ranked by Elo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/users/wishlist?kind=" + url.QueryEscape(wishlistKind)
		if wishlistSort != "" {
			path += "&sort=" + url.QueryEscape(wishlistSort)
		}
		body, err := apiGet(path)
		if err != nil {
			return err
		}

		var result struct {
			Entries []backlogEntryView `json:"entries"`
		}
		json.Unmarshal(body, &result)

		fmt.Printf("Wishlist (%s):\n\n", wishlistKind)
		printEntries(result.Entries)
		return nil
	},
}

var wishlistUpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show upcoming releases",
	Long:  `Display unreleased wishlist artifacts of one kind, soonest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiGet("/users/upcoming?kind=" + url.QueryEscape(wishlistKind))
		if err != nil {
			return err
		}

		var result struct {
			Entries []backlogEntryView `json:"entries"`
		}
		json.Unmarshal(body, &result)

		fmt.Printf("Upcoming releases (%s):\n\n", wishlistKind)
		if len(result.Entries) == 0 {
			fmt.Println("Nothing on the horizon.")
			return nil
		}
		for _, e := range result.Entries {
			fmt.Printf("  %d. %s (id %d) — %s\n", e.Position, e.Title, e.ArtifactID, e.ReleaseDate.Format("2006-01-02"))
		}
		return nil
	},
}

var wishlistDuelCmd = &cobra.Command{
	Use:   "duel [winner-id] [loser-id]",
	Short: "Record a wishlist Elo duel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var winnerID, loserID int64
		if _, err := fmt.Sscanf(args[0], "%d", &winnerID); err != nil {
			return fmt.Errorf("invalid winner id: %s", args[0])
		}
		if _, err := fmt.Sscanf(args[1], "%d", &loserID); err != nil {
			return fmt.Errorf("invalid loser id: %s", args[1])
		}

		body, err := apiPost("/users/wishlist/duel", map[string]interface{}{
			"winner_id": winnerID,
			"loser_id":  loserID,
		})
		if err != nil {
			return err
		}

		var result struct {
			WinnerElo float64 `json:"winner_elo"`
			LoserElo  float64 `json:"loser_elo"`
		}
		json.Unmarshal(body, &result)

		printSuccess("Duel recorded!")
		fmt.Printf("Winner Elo: %.1f\n", result.WinnerElo)
		fmt.Printf("Loser Elo:  %.1f\n", result.LoserElo)
		return nil
	},
}

func init() {
	wishlistShowCmd.Flags().StringVar(&wishlistKind, "kind", "movie", "Artifact kind")
	wishlistShowCmd.Flags().StringVar(&wishlistSort, "sort", "", "Sort key (RANK, ELO, DATE_ADDED, DATE_RELEASE)")
	wishlistUpcomingCmd.Flags().StringVar(&wishlistKind, "kind", "movie", "Artifact kind")

	wishlistCmd.AddCommand(wishlistShowCmd)
	wishlistCmd.AddCommand(wishlistUpcomingCmd)
	wishlistCmd.AddCommand(wishlistDuelCmd)
}
