// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/seqatlas/internal/accession"
	"github.com/pdiddy/seqatlas/internal/api"
	"github.com/pdiddy/seqatlas/internal/assemble"
	"github.com/pdiddy/seqatlas/internal/fasta"
	"github.com/pdiddy/seqatlas/internal/highlight"
	"github.com/pdiddy/seqatlas/internal/job"
	"github.com/pdiddy/seqatlas/internal/timeline"
	"github.com/pdiddy/seqatlas/internal/view"
	"github.com/pdiddy/seqatlas/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [sequence-file]",
	Short: "Submit a sequence and render its similarity neighborhood",
	Long: `Analyze reads a query sequence from a FASTA file (or - for stdin), submits
it to the analysis service, and polls the job until it completes. The ranked
similarity hits are resolved against the cached reference collection and
rendered as a results table plus a per-country summary.

The reference collection downloads concurrently with the job, so a cold
cache adds no wall-clock time to the run. Use --threshold and --as-of to
filter the rendered hits, and --export to save the full result set for
later seqatlas timelapse runs.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("sequence", "", "FASTA file with the query sequence (use - for stdin)")
	analyzeCmd.Flags().String("model", "", "analysis model to run (empty = service default)")
	analyzeCmd.Flags().Int("n-results", 0, "number of similarity hits to request (default 50)")
	analyzeCmd.Flags().Duration("poll-interval", 0, "delay between status polls (default 5s)")
	analyzeCmd.Flags().Int("max-attempts", 0, "status poll budget before giving up (default 60)")
	analyzeCmd.Flags().Float64("threshold", 0, "hide hits below this similarity")
	analyzeCmd.Flags().Int("as-of", 0, "hide hits collected after this year")
	analyzeCmd.Flags().StringArray("highlight", nil, "accession to emphasize in every view (repeatable)")
	analyzeCmd.Flags().Bool("substring-match", false, "enable low-confidence substring resolution")
	analyzeCmd.Flags().Bool("json", false, "print the result document as JSON instead of tables")
	analyzeCmd.Flags().String("export", "", "write the result document to this path (.json, .yaml or .csv)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("sequence")
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("provide a sequence file: --sequence query.fasta, a positional path, or - for stdin")
	}

	rec, err := fasta.ReadQuery(path)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	applyAnalyzeFlags(cmd, &cfg)

	if cfg.API.Key == "" {
		return fmt.Errorf("no API key configured: pass --api-key, set SEQATLAS_API_KEY, or add api.key to seqatlas.yaml")
	}

	client := api.NewClient(cfg.API)
	cache, closeStore := openCache(client, cfg.Cache)
	defer closeStore()

	ctx := cmd.Context()

	// Warm the reference cache while the job runs; the EnsureLoaded after
	// the job joins this load instead of starting a second one.
	go func() { _, _ = cache.EnsureLoaded(ctx) }()

	ctrl := job.NewController(client, cfg.Job)
	ctrl.OnUpdate = progressPrinter(os.Stderr)

	model, _ := cmd.Flags().GetString("model")
	j, err := ctrl.Run(ctx, rec.Seq, model)
	if err != nil {
		return discardKeyOnAuth(err)
	}

	idx, err := cache.EnsureLoaded(ctx)
	if err != nil {
		return discardKeyOnAuth(err)
	}

	resolver := accession.NewResolver(idx, cfg.Resolver)
	set := assemble.Assemble(j, resolver)

	player := timeline.NewPlayer(set.Points, cfg.Player)
	if threshold, _ := cmd.Flags().GetFloat64("threshold"); threshold > 0 {
		player.SetThreshold(threshold)
	}
	if asOf, _ := cmd.Flags().GetInt("as-of"); asOf > 0 {
		player.SetYear(asOf)
	}

	doc := view.NewDocument(j, set)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
	} else {
		renderViews(cmd, player, set)
	}

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		if err := view.WriteDocument(exportPath, doc); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", exportPath)
	}
	return nil
}

// renderViews draws the results table and the country summary, both
// subscribed to one highlight hub so --highlight marks land in each.
func renderViews(cmd *cobra.Command, player *timeline.Player, set types.AssembledSet) {
	table := view.NewTableView()
	summary := view.NewSummaryView()

	hub := highlight.NewHub()
	hub.Subscribe(table)
	hub.Subscribe(summary)
	marks, _ := cmd.Flags().GetStringArray("highlight")
	for _, acc := range marks {
		hub.Set(acc, true)
	}

	frame := view.Frame{
		Visible:   player.Visible(),
		Window:    player.Window(),
		Matched:   set.Matched,
		Unmatched: set.Unmatched,
	}
	table.Render(os.Stdout, frame)
	fmt.Println()
	summary.Render(os.Stdout, frame)
}

// applyAnalyzeFlags overlays per-run flags onto the resolved configuration.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *types.PipelineConfig) {
	if v, _ := cmd.Flags().GetDuration("poll-interval"); v > 0 {
		cfg.Job.PollInterval = v
	}
	if v, _ := cmd.Flags().GetInt("max-attempts"); v > 0 {
		cfg.Job.MaxAttempts = v
	}
	if v, _ := cmd.Flags().GetInt("n-results"); v > 0 {
		cfg.Job.ResultCount = v
	}
	if on, _ := cmd.Flags().GetBool("substring-match"); on {
		cfg.Resolver.AllowSubstring = true
	}
}

// progressPrinter reports job progress on w: every status change, plus a
// heartbeat every tenth poll.
func progressPrinter(w io.Writer) func(types.Job) {
	var lastStatus types.JobStatus
	return func(j types.Job) {
		switch {
		case j.Status != lastStatus:
			lastStatus = j.Status
			switch j.Status {
			case types.JobSubmitted:
				fmt.Fprintf(w, "job %s submitted (submission %s)\n", j.ID, j.SubmissionID)
			case types.JobCompleted:
				fmt.Fprintf(w, "job %s completed after %d poll(s)\n", j.ID, j.Attempts)
			case types.JobFailed:
				fmt.Fprintf(w, "job %s failed: %s\n", j.ID, j.Error)
			case types.JobTimedOut:
				fmt.Fprintf(w, "job %s gave up after %d poll(s)\n", j.ID, j.Attempts)
			default:
				fmt.Fprintf(w, "job %s %s\n", j.ID, j.Status)
			}
		case j.Attempts > 0 && j.Attempts%10 == 0:
			fmt.Fprintf(w, "job %s: %s, poll %d, ~%.0f%%\n", j.ID, j.Status, j.Attempts, j.Progress*100)
		}
	}
}
