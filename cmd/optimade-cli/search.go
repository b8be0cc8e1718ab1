package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matgraph/optimade-client/pkg/controller"
	"github.com/matgraph/optimade-client/pkg/query"
	"github.com/matgraph/optimade-client/pkg/response"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a provider for structures",
	Long: `Search runs an OPTIMADE structures query against a provider. The filter
fragment is combined with an exclusion predicate that removes disordered
structures by default; pass --exclusion to change it.

Provider errors are reported, never retried. Use --pages to follow
pagination beyond the first page.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("base-url", "", "provider base URL (see the providers command)")
	searchCmd.Flags().String("filter", "", "OPTIMADE filter fragment, e.g. 'elements HAS \"Si\"'")
	searchCmd.Flags().String("exclusion", "", "exclusion predicate combined into every filter (default: curated disorder exclusion)")
	searchCmd.Flags().Int("page-limit", 10, "results per page")
	searchCmd.Flags().Int("pages", 1, "maximum pages to fetch")
	searchCmd.Flags().String("fields", "", "response fields to request (comma-separated)")
	searchCmd.Flags().Bool("strict", false, "treat provider-reported errors as fatal")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.MarkFlagRequired("base-url")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	userFilter, _ := cmd.Flags().GetString("filter")
	exclusion, _ := cmd.Flags().GetString("exclusion")
	pageLimit, _ := cmd.Flags().GetInt("page-limit")
	maxPages, _ := cmd.Flags().GetInt("pages")
	fieldsFlag, _ := cmd.Flags().GetString("fields")
	strict, _ := cmd.Flags().GetBool("strict")
	asJSON, _ := cmd.Flags().GetBool("json")

	var fields []string
	if fieldsFlag != "" {
		fields = strings.Split(fieldsFlag, ",")
	}

	executorCfg := query.DefaultConfig()
	executorCfg.UserAgent = viper.GetString("user-agent")
	if addr := viper.GetString("redis"); addr != "" {
		executorCfg.Redis = redis.NewClient(&redis.Options{Addr: addr})
	}

	controllerCfg := controller.DefaultConfig()
	controllerCfg.Exclusion = exclusion
	controllerCfg.PageLimit = pageLimit
	controllerCfg.Strict = strict

	c := controller.New(query.New(executorCfg), controllerCfg)
	ctx := cmd.Context()

	result, err := c.SubmitQuery(ctx, baseURL, userFilter, pageLimit, fields)
	if err != nil {
		return err
	}

	var all []controller.Result
	all = append(all, result)

	for page := 1; page < maxPages; page++ {
		if result.Outcome.Kind != response.KindSuccess {
			break
		}
		target, ok := c.NextPageTarget()
		if !ok {
			break
		}
		result, err = c.AdvancePage(ctx, target)
		if err != nil {
			return err
		}
		all = append(all, result)
	}

	return printResults(os.Stdout, all, c.CurrentPagination().TotalCount, asJSON)
}

// searchRecord is the JSON output shape for a single structure.
type searchRecord struct {
	ID      string `json:"id"`
	Formula string `json:"formula"`
	Label   string `json:"label"`
}

// printResults renders fetched pages as text or JSON. Error outcomes
// become a non-nil error naming the failure.
func printResults(w io.Writer, pages []controller.Result, totalCount *int, asJSON bool) error {
	var records []searchRecord
	for _, page := range pages {
		if page.Outcome.Kind != response.KindSuccess {
			return fmt.Errorf("query failed (%s): %s", page.Outcome.Kind, outcomeMessage(page.Outcome))
		}
		for _, s := range page.Structures {
			records = append(records, searchRecord{
				ID:      s.ID,
				Formula: s.Formula(),
				Label:   s.Label(),
			})
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, r := range records {
		fmt.Fprintln(w, r.Label)
	}
	if totalCount != nil {
		fmt.Fprintf(w, "%d of %d results\n", len(records), *totalCount)
	} else {
		fmt.Fprintf(w, "%d results\n", len(records))
	}
	return nil
}

// outcomeMessage picks the most specific message an outcome carries.
func outcomeMessage(o response.Outcome) string {
	if len(o.Messages) > 0 {
		return strings.Join(o.Messages, "; ")
	}
	return o.Message
}
