package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

func TestBackoffSchedule(t *testing.T) {
	var prev time.Duration
	for attempt := 0; attempt <= 12; attempt++ {
		d := exponentialBackoff(attempt)
		switch {
		case attempt < 5 && d != time.Second<<attempt:
			t.Fatalf("attempt %d: backoff %v, want %v", attempt, d, time.Second<<attempt)
		case d > maxBackoff:
			t.Fatalf("attempt %d: backoff %v exceeds cap", attempt, d)
		case d < prev:
			t.Fatalf("attempt %d: backoff shrank from %v to %v", attempt, prev, d)
		}
		prev = d
	}
	if prev != maxBackoff {
		t.Fatalf("late attempts should sit at the cap, got %v", prev)
	}
}

func TestRetryableErrors(t *testing.T) {
	retry := []error{
		amqp091.ErrClosed,
		fmt.Errorf("publish: %w", amqp091.ErrClosed),
		errors.New("dial tcp: Connection refused"),
		io.ErrUnexpectedEOF,
		errors.New("write: broken pipe"),
		errors.New("use of closed network connection"),
	}
	for _, err := range retry {
		if !isConnectionError(err) {
			t.Errorf("%v should trigger a reconnect", err)
		}
	}
	final := []error{nil, errNotConnected, ErrCircuitOpen, errors.New("exchange not found")}
	for _, err := range final {
		if isConnectionError(err) {
			t.Errorf("%v should not trigger a reconnect", err)
		}
	}
}

func TestBreakerLifecycle(t *testing.T) {
	c := &Client{exchangeName: "genka", queueName: "runs"}
	fail := func(n int) {
		for i := 0; i < n; i++ {
			c.recordFailure()
		}
	}
	age := func(d time.Duration) { c.lastFailure = time.Now().Add(-d) }

	steps := []struct {
		name  string
		act   func()
		open  bool
		state int32
	}{
		{"fresh client", func() {}, false, StateClosed},
		{"below threshold", func() { fail(maxFailures - 1) }, false, StateClosed},
		{"threshold reached", func() { fail(1) }, true, StateOpen},
		{"still cooling down", func() { age(openTimeout / 2) }, true, StateOpen},
		{"cooled down", func() { age(openTimeout + time.Second) }, false, StateHalfOpen},
		{"trial fails", func() { fail(1) }, true, StateOpen},
		{"cooled down again", func() { age(2 * openTimeout) }, false, StateHalfOpen},
		{"trial succeeds", c.recordSuccess, false, StateClosed},
	}
	for _, st := range steps {
		st.act()
		if got := c.isCircuitOpen(); got != st.open {
			t.Fatalf("%s: open = %v, want %v", st.name, got, st.open)
		}
		if got := atomic.LoadInt32(&c.state); got != st.state {
			t.Fatalf("%s: state = %d, want %d", st.name, got, st.state)
		}
	}
	if n := atomic.LoadInt64(&c.failureCount); n != 0 {
		t.Fatalf("success should clear failures, have %d", n)
	}
}

func TestPublishShortCircuits(t *testing.T) {
	c := &Client{exchangeName: "genka", queueName: "runs"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.PublishRunCompleted(ctx, NewRunCompletedMessage("run-1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context: got %v", err)
	}
	if atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("a cancelled publish is not a broker failure")
	}

	atomic.StoreInt32(&c.state, StateOpen)
	c.lastFailure = time.Now()
	if err := c.PublishRunCompleted(context.Background(), NewRunCompletedMessage("run-1")); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker: got %v", err)
	}
}

func TestClient_PublishWithoutConnection(t *testing.T) {
	client := &Client{exchangeName: "genka", queueName: "runs"}
	err := client.PublishRunCompleted(context.Background(), NewRunCompletedMessage("run-1"))
	if !errors.Is(err, errNotConnected) {
		t.Fatalf("expected errNotConnected, got %v", err)
	}
	if atomic.LoadInt64(&client.failureCount) == 0 {
		t.Error("failed publish should be recorded")
	}
}

func TestNewRunCompletedMessage(t *testing.T) {
	msg := NewRunCompletedMessage("run-1")
	if msg.RunID != "run-1" {
		t.Errorf("RunID = %q", msg.RunID)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestRunCompletedMessage_JSON(t *testing.T) {
	msg := &RunCompletedMessage{
		RunID:        "0b8f",
		Source:       "final_output.json",
		Items:        82,
		Amount:       23_724_018,
		Valid:        true,
		FindingCount: 0,
		ReviewCount:  9,
		Timestamp:    time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	for _, key := range []string{`"run_id":"0b8f"`, `"is_valid":true`, `"error_count":0`, `"review_count":9`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("JSON %s missing %s", b, key)
		}
	}
	parsed, err := RunCompletedMessageFromJSON(b)
	if err != nil {
		t.Fatalf("RunCompletedMessageFromJSON() error = %v", err)
	}
	if parsed.RunID != msg.RunID || parsed.Items != msg.Items || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestRunCompletedMessage_InvalidJSON(t *testing.T) {
	if _, err := RunCompletedMessageFromJSON([]byte(`{"items": "many"}`)); err == nil {
		t.Error("RunCompletedMessageFromJSON() should fail with invalid JSON")
	}
}
