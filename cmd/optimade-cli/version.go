package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the optimade-cli version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("optimade-cli", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
