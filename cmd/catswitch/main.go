package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "catswitch",
	Short: "Cycle through running applications grouped by category",
	Long: `catswitch classifies running applications into categories (cached, with an
optional language-model classifier and offline fallback rules) and cycles
through them one category at a time.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("CATSWITCH_CONFIG", configPath)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CATSWITCH_CONFIG or ~/.config/catswitch/config.toml)")

	rootCmd.AddCommand(classifyCmd, indexCmd, cacheCmd, keyCmd, configCmd, previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
