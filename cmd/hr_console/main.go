// Package main provides the hr_console command line client for the HR interview API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hr_console",
	Short: "HR interview admin console",
	Long:  "hr_console manages candidates, their reviews, job roles and skills, and generates interview questions through the HR interview API.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	baseURL     string
	logLevel    string
	showMetrics bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (overrides config and HR_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print API request metrics when the command finishes")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
