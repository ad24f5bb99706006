package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subject string
	data    any
	err     error
}

func (f *fakePublisher) Publish(subject string, data any) error {
	f.subject = subject
	f.data = data
	return f.err
}

type fakePoster struct {
	texts []string
	err   error
}

func (f *fakePoster) PostMessage(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return f.err
}

func sampleReport() *Report {
	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return &Report{
		RunID:      uuid.MustParse("5b0e7c1e-4a8f-4c1a-9d4e-0c6f8a2b3d11"),
		SnapshotID: 17,
		Rows:       120,
		Groups:     40,
		Candidates: 12,
		Attempted:  12,
		Summaries:  10,
		Failed:     2,
		Changes:    55,
		StartedAt:  start,
		FinishedAt: start.Add(83*time.Second + 400*time.Millisecond),
	}
}

func TestEventNotifier(t *testing.T) {
	pub := &fakePublisher{}
	r := sampleReport()

	require.NoError(t, EventNotifier(pub).Notify(context.Background(), r))
	assert.Equal(t, SubjectRunCompleted, pub.subject)
	assert.Same(t, r, pub.data)
}

func TestEventNotifier_WrapsError(t *testing.T) {
	cause := errors.New("no responders")
	err := EventNotifier(&fakePublisher{err: cause}).Notify(context.Background(), sampleReport())

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), SubjectRunCompleted)
}

func TestPostNotifier(t *testing.T) {
	poster := &fakePoster{}

	require.NoError(t, PostNotifier(poster).Notify(context.Background(), sampleReport()))
	require.Len(t, poster.texts, 1)
	assert.Equal(t, FormatReport(sampleReport()), poster.texts[0])
}

func TestPostNotifier_WrapsError(t *testing.T) {
	cause := errors.New("channel_not_found")
	err := PostNotifier(&fakePoster{err: cause}).Notify(context.Background(), sampleReport())
	assert.ErrorIs(t, err, cause)
}

func TestFormatReport(t *testing.T) {
	text := FormatReport(sampleReport())

	assert.Contains(t, text, "*Snapshot 17 digest*")
	assert.Contains(t, text, "rows fetched: 120")
	assert.Contains(t, text, "tickets: 40 (12 to summarize)")
	assert.Contains(t, text, "summaries: 10 of 12 requested (2 errors)")
	assert.Contains(t, text, "changes written: 55")
	assert.Contains(t, text, "took 1m23s")
	assert.Contains(t, text, "run 5b0e7c1e-4a8f-4c1a-9d4e-0c6f8a2b3d11")
	assert.NotContains(t, text, "stopped early")
}

func TestFormatReport_StoppedEarly(t *testing.T) {
	r := sampleReport()
	r.Failed = 0
	r.RateLimited = true
	text := FormatReport(r)
	assert.Contains(t, text, "stopped early: rate limited")
	assert.NotContains(t, text, "errors")

	r.RateLimited = false
	r.Interrupted = true
	assert.Contains(t, FormatReport(r), "stopped early: interrupted")
}

func TestFormatReport_NoTimings(t *testing.T) {
	r := sampleReport()
	r.FinishedAt = time.Time{}
	assert.NotContains(t, FormatReport(r), "took")
}
