package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tralvick/backloghub/cli/config"
)

var logsTailCount int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Manage CLI logs",
	Long:  `View, search, and manage the log files the CLI writes under the configured log directory.`,
}

// logDir resolves the configured log directory; every subcommand needs it.
func logDir() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Logging.Path == "" {
		return "", fmt.Errorf("no log directory configured; run: backloghub init")
	}
	return cfg.Logging.Path, nil
}

// scanLogs walks every .log file in dir and calls visit per line.
func scanLogs(dir string, visit func(file string, lineNum int, line string)) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".log") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, file.Name()))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			visit(file.Name(), lineNum, scanner.Text())
		}
		f.Close()
	}
	return nil
}

var logsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent log lines",
	Long:  `Display the most recent lines of the CLI log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := logDir()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(filepath.Join(dir, "cli.log"))
		if err != nil {
			printInfo("No log file yet")
			return nil
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) > logsTailCount {
			lines = lines[len(lines)-logsTailCount:]
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

var logsErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show error logs",
	Long:  `Display WARN and ERROR events from the log files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := logDir()
		if err != nil {
			return err
		}

		fmt.Println("Error Logs:")
		fmt.Println("-----------")

		found := false
		err = scanLogs(dir, func(file string, _ int, line string) {
			// log lines carry the level as the second field
			if strings.Contains(line, " ERROR ") || strings.Contains(line, " WARN ") {
				fmt.Printf("[%s] %s\n", file, line)
				found = true
			}
		})
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("No errors found in logs.")
		}
		return nil
	},
}

var logsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search logs",
	Long:  `Search for a specific string in the log files.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.ToLower(args[0])
		dir, err := logDir()
		if err != nil {
			return err
		}

		fmt.Printf("Searching for \"%s\" in logs...\n", query)
		fmt.Println("-----------------------------------")

		found := false
		err = scanLogs(dir, func(file string, lineNum int, line string) {
			if strings.Contains(strings.ToLower(line), query) {
				fmt.Printf("[%s:%d] %s\n", file, lineNum, line)
				found = true
			}
		})
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("No matches found.")
		}
		return nil
	},
}

var logsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old logs",
	Long:  `Delete all log files in the log directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := logDir()
		if err != nil {
			return err
		}
		files, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read log directory: %w", err)
		}

		count := 0
		for _, file := range files {
			if !file.IsDir() && strings.HasSuffix(file.Name(), ".log") {
				if err := os.Remove(filepath.Join(dir, file.Name())); err == nil {
					count++
				}
			}
		}

		printSuccess(fmt.Sprintf("Deleted %d log files", count))
		return nil
	},
}

var logsRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate logs",
	Long:  `Archive current logs and start fresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := logDir()
		if err != nil {
			return err
		}
		files, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read log directory: %w", err)
		}

		timestamp := time.Now().Format("20060102-150405")
		count := 0
		for _, file := range files {
			name := file.Name()
			if file.IsDir() || !strings.HasSuffix(name, ".log") || strings.Contains(name, "archive") {
				continue
			}
			archived := fmt.Sprintf("%s.archive.%s.log", strings.TrimSuffix(name, ".log"), timestamp)
			if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, archived)); err == nil {
				count++
			}
		}

		printSuccess(fmt.Sprintf("Rotated %d log files", count))
		return nil
	},
}

func init() {
	logsTailCmd.Flags().IntVarP(&logsTailCount, "lines", "n", 20, "Number of lines to show")

	logsCmd.AddCommand(logsTailCmd)
	logsCmd.AddCommand(logsErrorsCmd)
	logsCmd.AddCommand(logsSearchCmd)
	logsCmd.AddCommand(logsCleanCmd)
	logsCmd.AddCommand(logsRotateCmd)
}
