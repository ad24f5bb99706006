package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeSquared-Agency/digest/internal/openai"
	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

// scripted returns a fixed Result per ticket, keyed by the first description.
type scripted struct {
	results map[string]Result
	seen    []string
}

func (s *scripted) Summarize(_ context.Context, descriptions []string) Result {
	key := descriptions[0]
	s.seen = append(s.seen, key)
	if r, ok := s.results[key]; ok {
		return r
	}
	return Result{Summary: "summary of " + strings.Join(descriptions, "+"), Status: StatusOK}
}

type recordingObserver struct {
	tickets []string
}

func (o *recordingObserver) GroupDone(ticket string, _ Result) {
	o.tickets = append(o.tickets, ticket)
}

func groups(tickets ...string) []snapshot.TicketGroup {
	out := make([]snapshot.TicketGroup, len(tickets))
	for i, t := range tickets {
		out[i] = snapshot.TicketGroup{TicketNumber: t, Descriptions: []string{t + "-a", t + "-b"}}
	}
	return out
}

func TestBatch_AllSucceed(t *testing.T) {
	s := &scripted{}
	obs := &recordingObserver{}

	res := NewBatch(s, obs, discardLogger()).Run(context.Background(), groups("A-1", "B-2"))

	assert.Equal(t, map[string]string{
		"A-1": "summary of A-1-a+A-1-b",
		"B-2": "summary of B-2-a+B-2-b",
	}, res.Summaries)
	assert.Equal(t, 2, res.Attempted)
	assert.False(t, res.RateLimited)
	assert.Equal(t, []string{"A-1", "B-2"}, obs.tickets)
}

func TestBatch_RateLimitStopsEarly(t *testing.T) {
	s := &scripted{results: map[string]Result{
		"C-3-a": {Status: StatusRateLimited, Err: openai.ErrRateLimited},
	}}

	res := NewBatch(s, nil, discardLogger()).Run(context.Background(), groups("A-1", "B-2", "C-3", "D-4", "E-5"))

	assert.True(t, res.RateLimited)
	assert.Equal(t, 3, res.Attempted)
	assert.Len(t, res.Summaries, 2)
	assert.Contains(t, res.Summaries, "A-1")
	assert.Contains(t, res.Summaries, "B-2")
	assert.Equal(t, []string{"A-1-a", "B-2-a", "C-3-a"}, s.seen, "no group after the rate limit is attempted")
}

func TestBatch_RateLimitOnFirstGroup(t *testing.T) {
	s := &scripted{results: map[string]Result{
		"A-1-a": {Status: StatusRateLimited, Err: openai.ErrRateLimited},
	}}

	res := NewBatch(s, nil, discardLogger()).Run(context.Background(), groups("A-1", "B-2"))

	assert.True(t, res.RateLimited)
	assert.Empty(t, res.Summaries)
	assert.Equal(t, 1, res.Attempted)
}

func TestBatch_FailureIsSkipped(t *testing.T) {
	s := &scripted{results: map[string]Result{
		"B-2-a": {Status: StatusFailed, Err: errors.New("boom")},
	}}

	res := NewBatch(s, nil, discardLogger()).Run(context.Background(), groups("A-1", "B-2", "C-3"))

	assert.False(t, res.RateLimited)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 1, res.Failed)
	assert.NotContains(t, res.Summaries, "B-2")
	assert.Len(t, res.Summaries, 2)
}

func TestBatch_EmptySummaryExcluded(t *testing.T) {
	s := &scripted{results: map[string]Result{
		"A-1-a": {Summary: "", Status: StatusOK},
	}}

	res := NewBatch(s, nil, discardLogger()).Run(context.Background(), groups("A-1", "B-2"))

	assert.Equal(t, 1, res.Empty)
	assert.NotContains(t, res.Summaries, "A-1")
	assert.Contains(t, res.Summaries, "B-2")
}

func TestBatch_CancelledContextKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &cancelAfter{n: 1, cancel: cancel}

	res := NewBatch(s, nil, discardLogger()).Run(ctx, groups("A-1", "B-2", "C-3"))

	assert.True(t, res.Interrupted)
	assert.Equal(t, 1, res.Attempted)
	assert.Len(t, res.Summaries, 1)
}

func TestBatch_NoCandidates(t *testing.T) {
	res := NewBatch(&scripted{}, nil, discardLogger()).Run(context.Background(), nil)

	assert.NotNil(t, res.Summaries)
	assert.Empty(t, res.Summaries)
	assert.Zero(t, res.Attempted)
}

type cancelAfter struct {
	n      int
	calls  int
	cancel context.CancelFunc
}

func (c *cancelAfter) Summarize(_ context.Context, descriptions []string) Result {
	c.calls++
	if c.calls >= c.n {
		c.cancel()
	}
	return Result{Summary: "done " + descriptions[0], Status: StatusOK}
}
