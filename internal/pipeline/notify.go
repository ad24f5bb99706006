package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SubjectRunCompleted is the NATS subject a committed run is announced on.
const SubjectRunCompleted = "digest.snapshot.completed"

// Publisher sends a JSON event on a subject.
type Publisher interface {
	Publish(subject string, data any) error
}

// Poster posts a plain text message.
type Poster interface {
	PostMessage(ctx context.Context, text string) error
}

type eventNotifier struct {
	pub Publisher
}

// EventNotifier announces reports on SubjectRunCompleted.
func EventNotifier(pub Publisher) Notifier {
	return eventNotifier{pub: pub}
}

func (n eventNotifier) Notify(_ context.Context, r *Report) error {
	if err := n.pub.Publish(SubjectRunCompleted, r); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectRunCompleted, err)
	}
	return nil
}

type postNotifier struct {
	poster Poster
}

// PostNotifier posts FormatReport's text for every report.
func PostNotifier(p Poster) Notifier {
	return postNotifier{poster: p}
}

func (n postNotifier) Notify(ctx context.Context, r *Report) error {
	if err := n.poster.PostMessage(ctx, FormatReport(r)); err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	return nil
}

// FormatReport renders a short human-readable run summary.
func FormatReport(r *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Snapshot %d digest*\n", r.SnapshotID)
	fmt.Fprintf(&sb, "  - rows fetched: %d\n", r.Rows)
	fmt.Fprintf(&sb, "  - tickets: %d (%d to summarize)\n", r.Groups, r.Candidates)
	fmt.Fprintf(&sb, "  - summaries: %d of %d requested", r.Summaries, r.Attempted)
	if r.Failed > 0 {
		fmt.Fprintf(&sb, " (%d errors)", r.Failed)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  - changes written: %d\n", r.Changes)
	if r.RateLimited {
		sb.WriteString("  - stopped early: rate limited\n")
	} else if r.Interrupted {
		sb.WriteString("  - stopped early: interrupted\n")
	}
	if !r.FinishedAt.IsZero() && !r.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "  - took %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&sb, "run %s", r.RunID)
	return sb.String()
}
