package retry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/visioncart/orders/pkg/retry"
)

func fastPolicy(attempts int) retry.Policy {
	return retry.NewPolicy(attempts, time.Millisecond, 2*time.Millisecond)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("want success in 1 call, got err=%v calls=%d", err, calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("want success on 3rd call, got err=%v calls=%d", err, calls)
	}
}

func TestDo_ExhaustsAttempts_ReturnsLastError(t *testing.T) {
	t.Parallel()

	last := errors.New("still down")
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("want last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("want exactly MaxAttempts calls, got %d", calls)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	fatal := errors.New("bad request")
	policy := fastPolicy(5).WithRetryable(func(err error) bool {
		return !errors.Is(err, fatal)
	})

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) || calls != 1 {
		t.Fatalf("non-retryable must stop after 1 call, got err=%v calls=%d", err, calls)
	}
}

func TestDo_ContextCancelStopsBetweenAttempts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	policy := retry.NewPolicy(5, 50*time.Millisecond, 100*time.Millisecond)
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		cancel() // отмена во время первой попытки: ждать вторую нельзя
		return errors.New("temporary")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("want 1 call before cancellation, got %d", calls)
	}
}

// Одна политика обслуживает параллельные запросы (под -race):
// джиттер не должен делить нерасшаренное состояние между вызовами Do.
func TestDo_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	policy := fastPolicy(3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := policy.Do(context.Background(), func(context.Context) error {
				return errors.New("still down")
			})
			if err == nil {
				t.Error("want last error after exhausted attempts, got nil")
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRetryable(t *testing.T) {
	t.Parallel()

	if retry.DefaultRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
	if retry.DefaultRetryable(context.Canceled) || retry.DefaultRetryable(context.DeadlineExceeded) {
		t.Fatalf("context errors are not retryable")
	}
	if !retry.DefaultRetryable(errors.New("io timeout")) {
		t.Fatalf("ordinary errors are retryable")
	}
}

func TestNewPolicy_Defaults(t *testing.T) {
	t.Parallel()

	p := retry.NewPolicy(0, 0, 0)
	if p.MaxAttempts != 3 || p.Initial != 100*time.Millisecond || p.Max != 2*time.Second {
		t.Fatalf("defaults wrong: %+v", p)
	}
	if p.Retryable == nil {
		t.Fatalf("default Retryable must be set")
	}
}
