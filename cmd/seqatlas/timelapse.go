package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/seqatlas/internal/timeline"
	"github.com/pdiddy/seqatlas/internal/view"
	"github.com/pdiddy/seqatlas/pkg/types"
)

var timelapseCmd = &cobra.Command{
	Use:   "timelapse [export-file]",
	Short: "Replay a saved result set year by year",
	Long: `Timelapse loads a result document saved by analyze --export and plays it
back: each tick advances the collection-year cutoff one year, wrapping from
the newest year back to the oldest, and renders the hits visible at that
cutoff. Playback stops after --cycles full sweeps of the year range.`,
	RunE: runTimelapse,
}

func init() {
	timelapseCmd.Flags().String("input", "", "result document written by analyze --export (.json or .yaml)")
	timelapseCmd.Flags().Float64("threshold", 0, "hide hits below this similarity")
	timelapseCmd.Flags().Duration("interval", 0, "delay between frames (default 1s)")
	timelapseCmd.Flags().Int("cycles", 1, "full sweeps through the year range before stopping")

	rootCmd.AddCommand(timelapseCmd)
}

func runTimelapse(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return fmt.Errorf("provide a result document: --input results.json or a positional path")
	}

	doc, err := view.ReadDocument(input)
	if err != nil {
		return err
	}
	set := doc.Set()

	cfg := pipelineConfig()
	if v, _ := cmd.Flags().GetDuration("interval"); v > 0 {
		cfg.Player.TickInterval = v
	}
	cycles, _ := cmd.Flags().GetInt("cycles")
	if cycles < 1 {
		cycles = 1
	}

	player := timeline.NewPlayer(set.Points, cfg.Player)
	if threshold, _ := cmd.Flags().GetFloat64("threshold"); threshold > 0 {
		player.SetThreshold(threshold)
	}

	w := player.Window()
	if w.MinYear == 0 {
		return fmt.Errorf("no collection years in %s; nothing to animate", input)
	}
	frames := (w.MaxYear - w.MinYear + 1) * cycles

	table := view.NewTableView()
	done := make(chan struct{})
	var n int
	player.Play(func(fw types.TimeWindow) {
		if n >= frames {
			return
		}
		n++
		fmt.Printf("=== frame %d/%d: collected through %d ===\n", n, frames, fw.CurrentYear)
		table.Render(os.Stdout, view.Frame{
			Visible:   player.Visible(),
			Window:    fw,
			Matched:   set.Matched,
			Unmatched: set.Unmatched,
		})
		fmt.Println()
		if n == frames {
			close(done)
		}
	})
	<-done
	player.Pause()

	fmt.Printf("Played %d frame(s) over %d-%d\n", frames, w.MinYear, w.MaxYear)
	return nil
}
