package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/MikeSquared-Agency/digest/internal/pipeline"
)

func printSummary(w io.Writer, r *pipeline.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Fprintln(w)
	bold.Fprintf(w, "Snapshot %d digest\n", r.SnapshotID)
	fmt.Fprintf(w, "  Rows fetched:     %d\n", r.Rows)
	fmt.Fprintf(w, "  Tickets:          %d\n", r.Groups)
	fmt.Fprintf(w, "  To summarize:     %d\n", r.Candidates)
	fmt.Fprintf(w, "  Requested:        %d\n", r.Attempted)
	green.Fprintf(w, "  Summaries:        %d\n", r.Summaries)
	if r.Failed > 0 {
		red.Fprintf(w, "  Errors:           %d\n", r.Failed)
	}
	if r.Empty > 0 {
		yellow.Fprintf(w, "  Empty responses:  %d\n", r.Empty)
	}
	green.Fprintf(w, "  Changes written:  %d\n", r.Changes)
	switch {
	case r.RateLimited:
		yellow.Fprintln(w, "  Stopped early: rate limited, partial results written")
	case r.Interrupted:
		yellow.Fprintln(w, "  Stopped early: interrupted, partial results written")
	}
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(w, "  Duration:         %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "  Run:              %s\n", r.RunID)
}
