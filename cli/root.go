package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tralvick/backloghub/cli/config"
	"github.com/tralvick/backloghub/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:     "backloghub",
	Short:   "BacklogHub - track what you watch and play",
	Long:    `BacklogHub is a CLI for tracking movies, TV shows, anime and games: progress, ratings, ranked backlogs and wishlists.`,
	Version: "1.0.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initFileLogging()
	},
}

// initFileLogging routes the structured logger into the configured log
// directory. Before `backloghub init` runs there is no config and no
// log dir, so logging stays on its defaults.
func initFileLogging() {
	cfg, err := config.Load()
	if err != nil || cfg.Logging.Path == "" {
		return
	}
	f, err := os.OpenFile(filepath.Join(cfg.Logging.Path, "cli.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	logger.Init(logger.LogLevel(strings.ToUpper(cfg.Logging.Level)), false, f)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create the BacklogHub config directory and default configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, err := config.GetConfigPath(); err == nil {
			if _, err := os.Stat(path); err == nil {
				printInfo("Configuration already exists")
				fmt.Printf("Path: %s\n", path)
				return nil
			}
		}

		if err := config.Init(); err != nil {
			printError("Failed to initialize configuration")
			return err
		}

		path, _ := config.GetConfigPath()
		printSuccess("Configuration initialized!")
		fmt.Printf("Path: %s\n", path)
		fmt.Println("\nNext steps:")
		fmt.Println("  backloghub auth register --username <name> --email <email>")
		fmt.Println("  backloghub artifact search \"some title\"")
		return nil
	},
}

// Execute runs the root command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(artifactCmd)
	rootCmd.AddCommand(backlogCmd)
	rootCmd.AddCommand(wishlistCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(logsCmd)
}

func printSuccess(msg string) {
	fmt.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	fmt.Printf("✗ %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("ℹ %s\n", msg)
}
