package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/digest/internal/changes"
	"github.com/MikeSquared-Agency/digest/internal/grouping"
	"github.com/MikeSquared-Agency/digest/internal/progress"
	"github.com/MikeSquared-Agency/digest/internal/snapshot"
	"github.com/MikeSquared-Agency/digest/internal/summarizer"
)

// SnapshotSource yields the rows of one snapshot.
type SnapshotSource interface {
	ReadSnapshot(ctx context.Context, snapshotID int64) ([]snapshot.LogRow, error)
}

// ChangeSink atomically replaces the destination with records.
type ChangeSink interface {
	ReplaceChanges(ctx context.Context, records []snapshot.ChangeRecord) error
}

// BatchRunner summarizes candidate groups.
type BatchRunner interface {
	Run(ctx context.Context, candidates []snapshot.TicketGroup) summarizer.BatchResult
}

// Notifier is told about every committed run.
type Notifier interface {
	Notify(ctx context.Context, r *Report) error
}

// FatalError aborts a run. Stage names the step that failed.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Report summarizes one run.
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	SnapshotID  int64     `json:"snapshot_id"`
	Rows        int       `json:"rows"`
	Groups      int       `json:"groups"`
	Candidates  int       `json:"candidates"`
	Attempted   int       `json:"attempted"`
	Summaries   int       `json:"summaries"`
	Failed      int       `json:"failed"`
	Empty       int       `json:"empty"`
	Changes     int       `json:"changes"`
	RateLimited bool      `json:"rate_limited"`
	Interrupted bool      `json:"interrupted"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Pipeline runs one snapshot from read to committed changes.
type Pipeline struct {
	source    SnapshotSource
	sink      ChangeSink
	batch     BatchRunner
	notifiers []Notifier
	tracker   *progress.Tracker
	runID     uuid.UUID
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Pipeline)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithTracker(t *progress.Tracker) Option {
	return func(p *Pipeline) { p.tracker = t }
}

func WithRunID(id uuid.UUID) Option {
	return func(p *Pipeline) { p.runID = id }
}

func WithNotifiers(n ...Notifier) Option {
	return func(p *Pipeline) { p.notifiers = append(p.notifiers, n...) }
}

func New(source SnapshotSource, sink ChangeSink, batch BatchRunner, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: source,
		sink:   sink,
		batch:  batch,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == uuid.Nil {
		p.runID = uuid.New()
	}
	return p
}

// Run processes snapshotID. Summarization stops early on rate limiting or cancellation
// but whatever was summarized is still written. Read and write failures are fatal.
func (p *Pipeline) Run(ctx context.Context, snapshotID int64) (*Report, error) {
	logger := p.logger.With("run_id", p.runID.String(), "snapshot_id", snapshotID)
	report := &Report{RunID: p.runID, SnapshotID: snapshotID, StartedAt: p.now()}

	p.phase(progress.PhaseReading)
	logger.Info("reading snapshot")
	rows, err := p.source.ReadSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, p.fail(&FatalError{Stage: "read snapshot", Err: err})
	}
	report.Rows = len(rows)
	if p.tracker != nil {
		p.tracker.SetRows(len(rows))
	}
	logger.Info("fetched all data", "rows", len(rows))

	groups := grouping.Group(rows)
	candidates := grouping.Candidates(groups)
	report.Groups = len(groups)
	report.Candidates = len(candidates)
	if p.tracker != nil {
		p.tracker.SetGroups(len(groups), len(candidates))
	}
	logger.Info("grouped descriptions",
		"total_items", len(groups),
		"items_to_process", len(candidates),
	)

	p.phase(progress.PhaseSummarizing)
	res := p.batch.Run(ctx, candidates)
	report.Attempted = res.Attempted
	report.Summaries = len(res.Summaries)
	report.Failed = res.Failed
	report.Empty = res.Empty
	report.RateLimited = res.RateLimited
	report.Interrupted = res.Interrupted
	logger.Info("responses received",
		"responses", len(res.Summaries),
		"attempted", res.Attempted,
		"failed", res.Failed,
		"empty", res.Empty,
		"rate_limited", res.RateLimited,
		"interrupted", res.Interrupted,
	)

	// The replace is atomic, so it runs even when the caller has given up on summarizing.
	writeCtx := context.WithoutCancel(ctx)

	p.phase(progress.PhaseWriting)
	records := changes.Materialize(rows, res.Summaries, p.now())
	logger.Info("collected snapshot changes", "changes", len(records))

	if err := p.sink.ReplaceChanges(writeCtx, records); err != nil {
		return nil, p.fail(&FatalError{Stage: "write changes", Err: err})
	}
	report.Changes = len(records)
	report.FinishedAt = p.now()
	if p.tracker != nil {
		p.tracker.SetChanges(len(records))
	}
	p.phase(progress.PhaseDone)
	logger.Info("changes written to target table", "changes", len(records))

	for _, n := range p.notifiers {
		if err := n.Notify(writeCtx, report); err != nil {
			logger.Warn("failed to notify run completion", "error", err)
		}
	}

	return report, nil
}

func (p *Pipeline) phase(ph progress.Phase) {
	if p.tracker != nil {
		p.tracker.SetPhase(ph)
	}
}

func (p *Pipeline) fail(err *FatalError) error {
	if p.tracker != nil {
		p.tracker.Fail(err)
	}
	p.logger.Error("run failed", "run_id", p.runID.String(), "stage", err.Stage, "error", err.Err)
	return err
}
