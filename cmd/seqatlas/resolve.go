package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/seqatlas/internal/accession"
	"github.com/pdiddy/seqatlas/internal/api"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve ACCESSION [ACCESSION...]",
	Short: "Check identifiers against the cached reference collection",
	Long: `Resolve matches loosely-formatted accession identifiers against the
reference collection and reports which strategy produced each match: exact,
case-insensitive, version-stripped, prefix-stripped, or the opt-in substring
scan. Useful for working out why an analysis hit came back unplaced.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("substring-match", false, "enable low-confidence substring resolution")
	resolveCmd.Flags().Bool("json", false, "output resolutions as JSON")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more accession identifiers")
	}

	cfg := pipelineConfig()
	if on, _ := cmd.Flags().GetBool("substring-match"); on {
		cfg.Resolver.AllowSubstring = true
	}

	client := api.NewClient(cfg.API)
	cache, closeStore := openCache(client, cfg.Cache)
	defer closeStore()

	idx, err := cache.EnsureLoaded(cmd.Context())
	if err != nil {
		return discardKeyOnAuth(err)
	}

	resolver := accession.NewResolver(idx, cfg.Resolver)
	resolutions := resolver.ResolveAll(args)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if err := formatResolveOutput(resolutions, jsonOutput); err != nil {
		return err
	}

	var misses int
	for _, res := range resolutions {
		if res.Err != nil {
			misses++
		}
	}
	if misses > 0 {
		return fmt.Errorf("%d of %d identifier(s) unmatched", misses, len(resolutions))
	}
	return nil
}

func formatResolveOutput(resolutions []accession.Resolution, jsonOutput bool) error {
	if jsonOutput {
		reports := make([]resolveReport, 0, len(resolutions))
		for _, res := range resolutions {
			r := resolveReport{Query: res.Query}
			if res.Err != nil {
				r.Error = res.Err.Error()
			} else {
				r.Accession = res.Entry.Accession
				r.Strategy = string(res.Strategy)
				r.X, r.Y = res.Entry.Coordinates.X, res.Entry.Coordinates.Y
			}
			reports = append(reports, r)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-18s  %-24s  %s\n",
		"Query", "Strategy", "Resolved", "Position")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 88))

	var matched int
	for _, res := range resolutions {
		if res.Err != nil {
			fmt.Fprintf(os.Stdout, "%-24s  %-18s  %-24s  %s\n",
				res.Query, "-", "(unmatched)", "-")
			continue
		}
		matched++
		fmt.Fprintf(os.Stdout, "%-24s  %-18s  %-24s  (%.2f, %.2f)\n",
			res.Query, res.Strategy, res.Entry.Accession,
			res.Entry.Coordinates.X, res.Entry.Coordinates.Y)
	}

	fmt.Fprintf(os.Stdout, "\n%d of %d matched\n", matched, len(resolutions))
	return nil
}

// resolveReport is the JSON shape of one resolution.
type resolveReport struct {
	Query     string  `json:"query"`
	Accession string  `json:"accession,omitempty"`
	Strategy  string  `json:"strategy,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Error     string  `json:"error,omitempty"`
}
