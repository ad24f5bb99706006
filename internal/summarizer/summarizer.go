package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/digest/internal/openai"
	"github.com/MikeSquared-Agency/digest/internal/retry"
)

// Completer is the remote completion call the summarizer drives.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

// Status classifies the outcome of one summarization.
type Status int

const (
	StatusOK Status = iota
	StatusRateLimited
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRateLimited:
		return "rate_limited"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of summarizing one ticket's descriptions.
// Summary is only meaningful when Status is StatusOK and may still be empty.
type Result struct {
	Summary string
	Status  Status
	Err     error
}

type Summarizer struct {
	llm    Completer
	policy retry.Policy
	logger *slog.Logger
}

// New wraps llm in policy. Rate limiting is never retried regardless of policy.Retryable.
func New(llm Completer, policy retry.Policy, logger *slog.Logger) *Summarizer {
	s := &Summarizer{llm: llm, logger: logger}

	inner := policy.Retryable
	policy.Retryable = func(err error) bool {
		if errors.Is(err, openai.ErrRateLimited) {
			return false
		}
		if inner != nil {
			return inner(err)
		}
		return Transient(err)
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			logger.Warn("completion failed, retrying",
				"attempt", attempt,
				"wait", wait.String(),
				"error", err,
			)
		}
	}
	s.policy = policy
	return s
}

// Summarize asks the remote service for one summary of descriptions.
func (s *Summarizer) Summarize(ctx context.Context, descriptions []string) Result {
	messages := []openai.Message{
		{Role: "user", Content: BuildPrompt(descriptions)},
	}

	var raw string
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		out, err := s.llm.Complete(ctx, messages)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		if errors.Is(err, openai.ErrRateLimited) {
			s.logger.Error("rate limit reached", "error", err)
			return Result{Status: StatusRateLimited, Err: err}
		}
		s.logger.Error("summarization failed",
			"error", err,
			"retry_exhausted", retry.IsExhausted(err),
			"descriptions", descriptions,
		)
		return Result{Status: StatusFailed, Err: err}
	}

	return Result{Summary: strings.TrimRight(raw, "."), Status: StatusOK}
}

// Transient reports whether err looks like a failure that a retry could fix.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
