package summarizer

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

// ItemSummarizer produces one summary per description list.
type ItemSummarizer interface {
	Summarize(ctx context.Context, descriptions []string) Result
}

// Observer is told about every group the batch finishes.
type Observer interface {
	GroupDone(ticket string, r Result)
}

// BatchResult holds the summaries a batch collected and how it ended.
type BatchResult struct {
	Summaries   map[string]string // ticket number -> non-empty summary
	Attempted   int
	Failed      int
	Empty       int
	RateLimited bool
	Interrupted bool
}

// Batch drives an ItemSummarizer over candidate groups one at a time.
type Batch struct {
	summarizer ItemSummarizer
	observer   Observer
	logger     *slog.Logger
}

// NewBatch creates a batch runner. observer may be nil.
func NewBatch(s ItemSummarizer, observer Observer, logger *slog.Logger) *Batch {
	return &Batch{summarizer: s, observer: observer, logger: logger}
}

// Run summarizes candidates in order. A rate limit or a cancelled context stops the
// batch early; whatever was collected up to that point is returned.
func (b *Batch) Run(ctx context.Context, candidates []snapshot.TicketGroup) BatchResult {
	res := BatchResult{Summaries: make(map[string]string)}

	for _, g := range candidates {
		if ctx.Err() != nil {
			b.logger.Warn("summarization interrupted, keeping obtained results",
				"processed", res.Attempted,
				"remaining", len(candidates)-res.Attempted,
			)
			res.Interrupted = true
			break
		}

		b.logger.Info("requesting summary",
			"ticket_number", g.TicketNumber,
			"descriptions", len(g.Descriptions),
		)

		r := b.summarizer.Summarize(ctx, g.Descriptions)
		res.Attempted++
		if b.observer != nil {
			b.observer.GroupDone(g.TicketNumber, r)
		}

		switch r.Status {
		case StatusRateLimited:
			b.logger.Error("rate limit error, exiting with obtained result",
				"ticket_number", g.TicketNumber,
				"error", r.Err,
				"summaries", len(res.Summaries),
			)
			res.RateLimited = true
			return res
		case StatusFailed:
			b.logger.Error("unexpected error, continue with other items",
				"ticket_number", g.TicketNumber,
				"error", r.Err,
			)
			res.Failed++
			continue
		}

		if r.Summary == "" {
			b.logger.Warn("empty summary", "ticket_number", g.TicketNumber)
			res.Empty++
			continue
		}

		b.logger.Info("summary received", "ticket_number", g.TicketNumber, "summary", r.Summary)
		res.Summaries[g.TicketNumber] = r.Summary
	}

	return res
}
