package progress

import (
	"sync"
	"time"

	"github.com/MikeSquared-Agency/digest/internal/summarizer"
)

type Phase string

const (
	PhaseStarting    Phase = "starting"
	PhaseReading     Phase = "reading"
	PhaseSummarizing Phase = "summarizing"
	PhaseWriting     Phase = "writing"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// Snapshot is a point-in-time copy of run progress.
type Snapshot struct {
	RunID       string    `json:"run_id"`
	SnapshotID  int64     `json:"snapshot_id"`
	Phase       Phase     `json:"phase"`
	Rows        int       `json:"rows"`
	Groups      int       `json:"groups"`
	Candidates  int       `json:"candidates"`
	Processed   int       `json:"processed"`
	Summaries   int       `json:"summaries"`
	Failures    int       `json:"failures"`
	RateLimited bool      `json:"rate_limited"`
	Changes     int       `json:"changes"`
	LastTicket  string    `json:"last_ticket,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tracker records run progress. It is safe for concurrent readers.
type Tracker struct {
	mu  sync.Mutex
	cur Snapshot
	now func() time.Time
}

func NewTracker(runID string, snapshotID int64) *Tracker {
	t := &Tracker{now: time.Now}
	ts := t.now().UTC()
	t.cur = Snapshot{
		RunID:      runID,
		SnapshotID: snapshotID,
		Phase:      PhaseStarting,
		StartedAt:  ts,
		UpdatedAt:  ts,
	}
	return t
}

func (t *Tracker) update(fn func(*Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.cur)
	t.cur.UpdatedAt = t.now().UTC()
}

func (t *Tracker) SetPhase(p Phase) {
	t.update(func(s *Snapshot) { s.Phase = p })
}

func (t *Tracker) SetRows(n int) {
	t.update(func(s *Snapshot) { s.Rows = n })
}

func (t *Tracker) SetGroups(groups, candidates int) {
	t.update(func(s *Snapshot) {
		s.Groups = groups
		s.Candidates = candidates
	})
}

func (t *Tracker) SetChanges(n int) {
	t.update(func(s *Snapshot) { s.Changes = n })
}

// Fail marks the run failed with err.
func (t *Tracker) Fail(err error) {
	t.update(func(s *Snapshot) {
		s.Phase = PhaseFailed
		if err != nil {
			s.Error = err.Error()
		}
	})
}

// GroupDone implements summarizer.Observer.
func (t *Tracker) GroupDone(ticket string, r summarizer.Result) {
	t.update(func(s *Snapshot) {
		s.Processed++
		s.LastTicket = ticket
		switch r.Status {
		case summarizer.StatusOK:
			if r.Summary != "" {
				s.Summaries++
			}
		case summarizer.StatusFailed:
			s.Failures++
		case summarizer.StatusRateLimited:
			s.RateLimited = true
		}
	})
}

// Current returns a copy of the progress so far.
func (t *Tracker) Current() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}
