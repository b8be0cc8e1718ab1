package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matgraph/optimade-client/pkg/providers"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List queryable databases from the providers index",
	Long: `Providers fetches the OPTIMADE providers index and lists the databases
that can be queried, with the base URLs to pass to the search command.`,
	RunE: runProviders,
}

func init() {
	providersCmd.Flags().String("index-url", providers.DefaultIndexURL, "providers index base URL")
	providersCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	indexURL, _ := cmd.Flags().GetString("index-url")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := providers.DefaultConfig()
	cfg.IndexURL = indexURL
	cfg.UserAgent = viper.GetString("user-agent")

	list, err := providers.New(cfg).List(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBASE URL")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.BaseURL)
	}
	return tw.Flush()
}
