package cli

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/tralvick/backloghub/cli/config"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "System information",
	Long:  `Display system information and server diagnostics.`,
}

var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system info",
	Long:  `Display client environment, configuration summary, and server status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Client:")
		fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  Go: %s\n", runtime.Version())

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("\nConfiguration: not initialized (run: backloghub init)")
		} else {
			fmt.Println("\nConfiguration:")
			fmt.Printf("  Server: %s (http %d, ws %d)\n", cfg.Server.Host, cfg.Server.HTTPPort, cfg.Server.WebSocketPort)
			fmt.Printf("  Database: %s\n", cfg.Database.Path)
			fmt.Printf("  Log directory: %s\n", cfg.Logging.Path)
			if cfg.User.Username != "" {
				fmt.Printf("  Logged in as: %s\n", cfg.User.Username)
			} else {
				fmt.Println("  Logged in as: (not logged in)")
			}
		}

		fmt.Println("\nServer:")
		serverURL, err := config.GetServerURL()
		if err != nil {
			fmt.Println("  Status: unknown (config error)")
			return nil
		}
		client := http.Client{Timeout: 2 * time.Second}
		printEndpoint(&client, serverURL, "/health", "Liveness")
		printEndpoint(&client, serverURL, "/readyz", "Readiness")
		return nil
	},
}

func printEndpoint(client *http.Client, serverURL, path, label string) {
	resp, err := client.Get(serverURL + path)
	if err != nil {
		fmt.Printf("  %s: ✗ unreachable (%s)\n", label, err.Error())
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		fmt.Printf("  %s: ✓ HTTP %d\n", label, resp.StatusCode)
	} else {
		fmt.Printf("  %s: ⚠ HTTP %d\n", label, resp.StatusCode)
	}
}

func init() {
	systemCmd.AddCommand(systemInfoCmd)
}
