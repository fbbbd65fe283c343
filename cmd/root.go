package cmd

import (
	"fmt"
	"log"
	"os"

	"masta/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "masta",
	Short: "Masta is a self-hosted music library service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting Masta server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
