package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tralvick/backloghub/cli/config"
)

var (
	artifactKind   string
	artifactStatus string
	artifactScore  float64
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Artifact commands",
	Long:  `Search artifacts and inspect or update your progress on them.`,
}

var artifactSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for artifacts",
	Long:  `Search top-level artifacts of one kind by title.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: backloghub init")
			return err
		}

		searchURL := fmt.Sprintf("%s/artifacts?kind=%s&q=%s",
			serverURL, url.QueryEscape(artifactKind), url.QueryEscape(query))

		resp, err := http.Get(searchURL)
		if err != nil {
			printError("Search failed: Server connection error")
			fmt.Println("Check server status: backloghub system info")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.Unmarshal(body, &errResp)
			printError(fmt.Sprintf("Search failed: %s", errResp["error"]))
			return fmt.Errorf("search failed")
		}

		var result struct {
			Artifacts []struct {
				ID          int64  `json:"id"`
				Title       string `json:"title"`
				Kind        string `json:"kind"`
				ReleaseDate string `json:"release_date"`
				Description string `json:"description"`
			} `json:"artifacts"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		json.Unmarshal(body, &result)

		if len(result.Artifacts) == 0 {
			fmt.Printf("No %s found for query: %s\n", artifactKind, query)
			return nil
		}

		fmt.Printf("Found %d artifact(s):\n\n", result.Pagination.Total)
		for i, a := range result.Artifacts {
			fmt.Printf("%d. %s\n", i+1, a.Title)
			fmt.Printf("   ID: %d\n", a.ID)
			fmt.Printf("   Kind: %s\n", a.Kind)
			if a.Description != "" {
				desc := a.Description
				if len(desc) > 100 {
					desc = desc[:100] + "..."
				}
				fmt.Printf("   Description: %s\n", desc)
			}
			fmt.Println()
		}

		fmt.Println("To see details and progress:")
		fmt.Println("  backloghub artifact show <id>")

		return nil
	},
}

var artifactShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an artifact tree",
	Long:  `Display an artifact with its children, your progress and the mean rating.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil || cfg.User.Token == "" {
			printError("You are not logged in")
			return fmt.Errorf("please login first: backloghub auth login")
		}

		serverURL, err := config.GetServerURL()
		if err != nil {
			return err
		}

		req, _ := http.NewRequest("GET", serverURL+"/artifacts/"+args[0], nil)
		req.Header.Set("Authorization", "Bearer "+cfg.User.Token)

		resp, err := (&http.Client{}).Do(req)
		if err != nil {
			printError("Request failed: Server connection error")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.Unmarshal(body, &errResp)
			printError(fmt.Sprintf("Request failed: %s", errResp["error"]))
			return fmt.Errorf("request failed")
		}

		var node artifactNode
		if err := json.Unmarshal(body, &node); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		printArtifactNode(&node, 0)
		return nil
	},
}

var artifactStateCmd = &cobra.Command{
	Use:   "state [id]",
	Short: "Update your state on an artifact",
	Long:  `Set your status and score on an artifact. Marking a container finished cascades to its children.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil || cfg.User.Token == "" {
			printError("You are not logged in")
			return fmt.Errorf("please login first: backloghub auth login")
		}

		serverURL, err := config.GetServerURL()
		if err != nil {
			return err
		}

		var artifactID int64
		if _, err := fmt.Sscanf(args[0], "%d", &artifactID); err != nil {
			return fmt.Errorf("invalid artifact id: %s", args[0])
		}

		reqBody := map[string]interface{}{
			"artifact_id": artifactID,
		}
		if artifactStatus != "" {
			reqBody["status"] = artifactStatus
		}
		if cmd.Flags().Changed("score") {
			reqBody["score"] = artifactScore
		}
		jsonData, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest("PUT", serverURL+"/users/state", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+cfg.User.Token)

		resp, err := (&http.Client{}).Do(req)
		if err != nil {
			printError("Update failed: Server connection error")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.Unmarshal(body, &errResp)
			printError(fmt.Sprintf("Update failed: %s", errResp["error"]))
			return fmt.Errorf("update failed")
		}

		printSuccess("State updated!")
		return nil
	},
}

type artifactNode struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Kind        string      `json:"kind"`
	Code        string      `json:"code"`
	ReleaseDate time.Time   `json:"release_date"`
	MeanRating  *float64    `json:"mean_rating"`
	Progress    *struct {
		LastID *int64 `json:"last_artifact_id"`
		NextID *int64 `json:"next_artifact_id"`
	} `json:"progress"`
	State *struct {
		Status *string  `json:"status"`
		Score  *float64 `json:"score"`
	} `json:"user_state"`
	Children []*artifactNode `json:"children"`
}

func printArtifactNode(n *artifactNode, depth int) {
	indent := strings.Repeat("  ", depth)

	label := n.Title
	if n.Code != "" {
		label = fmt.Sprintf("%s %s", n.Code, n.Title)
	}
	fmt.Printf("%s%s (id %d, %s)\n", indent, label, n.ID, n.Kind)

	if !n.ReleaseDate.IsZero() {
		fmt.Printf("%s  Released: %s\n", indent, n.ReleaseDate.Format("2006-01-02"))
	}
	if n.MeanRating != nil {
		fmt.Printf("%s  Mean rating: %.1f\n", indent, *n.MeanRating)
	}
	if n.State != nil && n.State.Status != nil {
		status := *n.State.Status
		if n.State.Score != nil {
			fmt.Printf("%s  Your state: %s (score %.1f)\n", indent, status, *n.State.Score)
		} else {
			fmt.Printf("%s  Your state: %s\n", indent, status)
		}
	}
	if n.Progress != nil {
		if n.Progress.NextID != nil {
			fmt.Printf("%s  Next up: artifact %d\n", indent, *n.Progress.NextID)
		} else if n.Progress.LastID != nil {
			fmt.Printf("%s  All watched, last: artifact %d\n", indent, *n.Progress.LastID)
		}
	}

	for _, child := range n.Children {
		printArtifactNode(child, depth+1)
	}
}

func init() {
	artifactSearchCmd.Flags().StringVar(&artifactKind, "kind", "movie", "Artifact kind (movie, tvshow, anime, game)")

	artifactStateCmd.Flags().StringVar(&artifactStatus, "status", "", "Status (dropped, finished, ongoing, onhold, wishlist)")
	artifactStateCmd.Flags().Float64Var(&artifactScore, "score", 0, "Your score")

	artifactCmd.AddCommand(artifactSearchCmd)
	artifactCmd.AddCommand(artifactShowCmd)
	artifactCmd.AddCommand(artifactStateCmd)
}
