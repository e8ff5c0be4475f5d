package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/tralvick/backloghub/cli/config"
	"github.com/tralvick/backloghub/pkg/logger"
)

var (
	backlogSort string
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Backlog commands",
	Long:  `Create backlogs, manage their entries and run Elo duels.`,
}

var backlogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your backlogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiGet("/backlogs")
		if err != nil {
			return err
		}

		var result struct {
			Backlogs []struct {
				ID          int64  `json:"id"`
				Title       string `json:"title"`
				Kind        string `json:"kind"`
				RankingType string `json:"ranking_type"`
			} `json:"backlogs"`
		}
		json.Unmarshal(body, &result)

		if len(result.Backlogs) == 0 {
			fmt.Println("No backlogs yet.")
			fmt.Println("Create one: backloghub backlog create --title \"To watch\" --kind movie")
			return nil
		}

		fmt.Printf("Your backlogs (%d):\n\n", len(result.Backlogs))
		for _, b := range result.Backlogs {
			fmt.Printf("  %d. %s [%s, %s]\n", b.ID, b.Title, b.Kind, b.RankingType)
		}
		return nil
	},
}

var (
	backlogTitle       string
	backlogKind        string
	backlogRankingType string
)

var backlogCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		reqBody := map[string]string{
			"title":        backlogTitle,
			"kind":         backlogKind,
			"ranking_type": backlogRankingType,
		}
		body, err := apiPost("/backlogs", reqBody)
		if err != nil {
			return err
		}

		var created struct {
			ID int64 `json:"id"`
		}
		json.Unmarshal(body, &created)

		printSuccess("Backlog created!")
		fmt.Printf("ID: %d\n", created.ID)
		return nil
	},
}

var backlogShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a backlog's ranked entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/backlogs/" + args[0] + "/entries"
		if backlogSort != "" {
			path += "?sort=" + backlogSort
		}
		body, err := apiGet(path)
		if err != nil {
			return err
		}

		var result struct {
			Backlog struct {
				Title       string `json:"title"`
				RankingType string `json:"ranking_type"`
			} `json:"backlog"`
			Entries []backlogEntryView `json:"entries"`
		}
		json.Unmarshal(body, &result)

		fmt.Printf("%s [%s]\n\n", result.Backlog.Title, result.Backlog.RankingType)
		printEntries(result.Entries)
		return nil
	},
}

var backlogAddCmd = &cobra.Command{
	Use:   "add [backlog-id] [artifact-id]",
	Short: "Add an artifact to a backlog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var artifactID int64
		if _, err := fmt.Sscanf(args[1], "%d", &artifactID); err != nil {
			return fmt.Errorf("invalid artifact id: %s", args[1])
		}

		_, err := apiPost("/backlogs/"+args[0]+"/entries", map[string]interface{}{
			"artifact_id": artifactID,
		})
		if err != nil {
			return err
		}

		printSuccess("Entry added!")
		return nil
	},
}

var backlogDuelCmd = &cobra.Command{
	Use:   "duel [backlog-id] [winner-id] [loser-id]",
	Short: "Record an Elo duel between two entries",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var winnerID, loserID int64
		if _, err := fmt.Sscanf(args[1], "%d", &winnerID); err != nil {
			return fmt.Errorf("invalid winner id: %s", args[1])
		}
		if _, err := fmt.Sscanf(args[2], "%d", &loserID); err != nil {
			return fmt.Errorf("invalid loser id: %s", args[2])
		}

		body, err := apiPost("/backlogs/"+args[0]+"/duel", map[string]interface{}{
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

type backlogEntryView struct {
	ArtifactID  int64     `json:"artifact_id"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	Elo         float64   `json:"elo"`
	ReleaseDate time.Time `json:"release_date"`
}

func printEntries(entries []backlogEntryView) {
	if len(entries) == 0 {
		fmt.Println("No entries.")
		return
	}
	for _, e := range entries {
		pos := fmt.Sprintf("%d.", e.Position)
		if e.Position >= 1<<30 {
			pos = "-."
		}
		fmt.Printf("  %-4s %s (id %d, elo %.0f)\n", pos, e.Title, e.ArtifactID, e.Elo)
	}
}

// apiGet performs an authenticated GET and returns the body on 200.
func apiGet(path string) ([]byte, error) {
	cfg, err := config.Load()
	if err != nil || cfg.User.Token == "" {
		printError("You are not logged in")
		return nil, fmt.Errorf("please login first: backloghub auth login")
	}
	serverURL, err := config.GetServerURL()
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequest("GET", serverURL+path, nil)
	req.Header.Set("Authorization", "Bearer "+cfg.User.Token)

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		logger.GetLogger().Error("api_request_failed", "method", "GET", "path", path, "error", err.Error())
		printError("Request failed: Server connection error")
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var errResp map[string]string
		json.Unmarshal(body, &errResp)
		logger.GetLogger().Error("api_request_rejected", "method", "GET", "path", path, "status", resp.StatusCode)
		printError(fmt.Sprintf("Request failed: %s", errResp["error"]))
		return nil, fmt.Errorf("request failed")
	}
	logger.GetLogger().Debug("api_request", "method", "GET", "path", path, "status", resp.StatusCode)
	return body, nil
}

// apiPost performs an authenticated POST and returns the body on 2xx.
func apiPost(path string, payload interface{}) ([]byte, error) {
	cfg, err := config.Load()
	if err != nil || cfg.User.Token == "" {
		printError("You are not logged in")
		return nil, fmt.Errorf("please login first: backloghub auth login")
	}
	serverURL, err := config.GetServerURL()
	if err != nil {
		return nil, err
	}

	jsonData, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", serverURL+path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.User.Token)

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		logger.GetLogger().Error("api_request_failed", "method", "POST", "path", path, "error", err.Error())
		printError("Request failed: Server connection error")
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp map[string]string
		json.Unmarshal(body, &errResp)
		logger.GetLogger().Error("api_request_rejected", "method", "POST", "path", path, "status", resp.StatusCode)
		printError(fmt.Sprintf("Request failed: %s", errResp["error"]))
		return nil, fmt.Errorf("request failed")
	}
	logger.GetLogger().Debug("api_request", "method", "POST", "path", path, "status", resp.StatusCode)
	return body, nil
}

func init() {
	backlogCreateCmd.Flags().StringVar(&backlogTitle, "title", "", "Backlog title")
	backlogCreateCmd.Flags().StringVar(&backlogKind, "kind", "", "Artifact kind")
	backlogCreateCmd.Flags().StringVar(&backlogRankingType, "ranking", "RANK", "Ranking strategy (RANK, ELO, WISHLIST)")
	backlogCreateCmd.MarkFlagRequired("title")
	backlogCreateCmd.MarkFlagRequired("kind")

	backlogShowCmd.Flags().StringVar(&backlogSort, "sort", "", "Sort key (RANK, ELO, DATE_ADDED, DATE_RELEASE)")

	backlogCmd.AddCommand(backlogListCmd)
	backlogCmd.AddCommand(backlogCreateCmd)
	backlogCmd.AddCommand(backlogShowCmd)
	backlogCmd.AddCommand(backlogAddCmd)
	backlogCmd.AddCommand(backlogDuelCmd)
}
