package retry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/studypack/internal/model"
)

type mockGenerator struct {
	calls int
	fn    func(call int) (string, error)
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failThen fails the first n calls with err and answers "ok" afterwards.
func failThen(n int, err error) func(int) (string, error) {
	return func(call int) (string, error) {
		if call <= n {
			return "", err
		}
		return "ok", nil
	}
}

func TestRetryGenerator_Attempts(t *testing.T) {
	serverErr := &model.HTTPError{StatusCode: 503, Err: errors.New("overloaded")}

	tests := []struct {
		name       string
		maxRetries int
		fn         func(int) (string, error)
		wantCalls  int
		wantErr    error
	}{
		{
			name:       "first try",
			maxRetries: 3,
			fn:         failThen(0, nil),
			wantCalls:  1,
		},
		{
			name:       "recovers from server error",
			maxRetries: 3,
			fn:         failThen(2, serverErr),
			wantCalls:  3,
		},
		{
			name:       "no retries configured",
			maxRetries: 0,
			fn:         failThen(5, serverErr),
			wantCalls:  1,
			wantErr:    serverErr,
		},
		{
			name:       "client error is final",
			maxRetries: 3,
			fn:         failThen(5, &model.HTTPError{StatusCode: 401, Err: errors.New("bad key")}),
			wantCalls:  1,
		},
		{
			name:       "gives up after max retries",
			maxRetries: 2,
			fn:         failThen(5, errors.New("connection reset")),
			wantCalls:  3,
		},
		{
			name:       "blank reply is retried once",
			maxRetries: 3,
			fn:         failThen(1, model.ErrEmptyResponse),
			wantCalls:  2,
		},
		{
			name:       "second blank reply is final",
			maxRetries: 3,
			fn:         failThen(5, model.ErrEmptyResponse),
			wantCalls:  2,
			wantErr:    model.ErrEmptyResponse,
		},
		{
			name:       "finish reason is final",
			maxRetries: 3,
			fn:         failThen(5, &model.FinishError{Reason: "SAFETY"}),
			wantCalls:  1,
			wantErr:    model.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockGenerator{fn: tt.fn}
			g := NewRetryGenerator(mock, tt.maxRetries, time.Millisecond, discardLogger())

			got, err := g.Generate(context.Background(), "p")
			if mock.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.calls, tt.wantCalls)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != "ok" {
				t.Errorf("got %q, want ok", got)
			}
		})
	}
}

func TestRetryGenerator_ClientErrorKeepsStatus(t *testing.T) {
	mock := &mockGenerator{fn: failThen(5, &model.HTTPError{StatusCode: 401, Err: errors.New("bad key")})}

	g := NewRetryGenerator(mock, 3, time.Millisecond, discardLogger())
	_, err := g.Generate(context.Background(), "p")

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 401 {
		t.Fatalf("expected HTTPError with status 401, got %v", err)
	}
}

func TestRetryGenerator_LogsPromptSizeAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mock := &mockGenerator{fn: failThen(1, errors.New("connection reset"))}

	g := NewRetryGenerator(mock, 2, time.Millisecond, logger)
	if _, err := g.Generate(context.Background(), strings.Repeat("x", 1234)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"generation failed, retrying", "prompt_chars=1234", "generation recovered", "attempts=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRetryGenerator_RespectsContextCancellation(t *testing.T) {
	mock := &mockGenerator{fn: failThen(5, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewRetryGenerator(mock, 2, time.Second, discardLogger())
	_, err := g.Generate(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	g := NewRetryGenerator(nil, 3, time.Second, discardLogger())

	t.Run("retry-after wins", func(t *testing.T) {
		err := &model.HTTPError{StatusCode: 429, RetryAfter: 42 * time.Second}
		if d := g.backoffDelay(1, err); d != 42*time.Second {
			t.Errorf("delay = %v, want 42s", d)
		}
	})

	t.Run("retry-after is capped", func(t *testing.T) {
		err := &model.HTTPError{StatusCode: 429, RetryAfter: time.Hour}
		if d := g.backoffDelay(1, err); d != maxBackoff {
			t.Errorf("delay = %v, want %v", d, maxBackoff)
		}
	})

	t.Run("exponential with jitter", func(t *testing.T) {
		for attempt, base := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second} {
			d := g.backoffDelay(attempt, errors.New("x"))
			lo := time.Duration(float64(base) * 0.7)
			hi := time.Duration(float64(base) * 1.3)
			if d < lo || d > hi {
				t.Errorf("attempt %d: delay %v outside [%v, %v]", attempt, d, lo, hi)
			}
		}
	})

	t.Run("exponential is capped", func(t *testing.T) {
		if d := g.backoffDelay(40, errors.New("x")); d > maxBackoff {
			t.Errorf("attempt 40: delay %v exceeds %v", d, maxBackoff)
		}
	})
}
