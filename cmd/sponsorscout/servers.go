package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List all configured servers",
	Long:  "Reads the config and prints a table of all configured sponsorship servers.",
	RunE:  runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

func runServers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-15s %-40s %s\n", "Server", "Base URL", "Status")
	fmt.Println(strings.Repeat("─", 64))

	enabled, disabled := 0, 0
	for _, s := range cfg.Servers {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-15s %-40s %s\n", s.Name, s.BaseURL, status)
	}

	fmt.Printf("\nTotal: %d servers (%d enabled, %d disabled)\n", len(cfg.Servers), enabled, disabled)
	return nil
}
