// Пакет retry — явная политика повторов: лимит попыток, экспоненциальная
// задержка с equal-jitter и предикат ретраябельности. Политика — обычное
// значение, поэтому тестируется отдельно от вызывающего кода.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy — параметры повторов. Нулевое значение не годится: используйте
// NewPolicy, он проставляет безопасные дефолты.
type Policy struct {
	MaxAttempts int              // всего попыток, включая первую
	Initial     time.Duration    // стартовая задержка
	Max         time.Duration    // потолок задержки
	Retryable   func(error) bool // какие ошибки повторять
}

// NewPolicy — конструктор с дефолтами: 3 попытки, 100ms → 2s,
// повторяются любые ошибки, кроме отмены контекста.
func NewPolicy(maxAttempts int, initial, max time.Duration) Policy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	if max <= 0 {
		max = 2 * time.Second
	}
	return Policy{
		MaxAttempts: maxAttempts,
		Initial:     initial,
		Max:         max,
		Retryable:   DefaultRetryable,
	}
}

// WithRetryable — копия политики с другим предикатом.
func (p Policy) WithRetryable(fn func(error) bool) Policy {
	p.Retryable = fn
	return p
}

// DefaultRetryable — повторяем всё, кроме отмены/дедлайна контекста.
func DefaultRetryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Do — выполняет fn до успеха, исчерпания попыток или нератраябельной
// ошибки. Возвращает последнюю ошибку fn либо ошибку контекста.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.Initial
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if !p.sleep(ctx, p.withJitterEqual(delay)) {
			return ctx.Err()
		}
		delay = p.next(delay)
	}
	return lastErr
}

// sleep ждёт d или останавливается по контексту.
func (p Policy) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// next — следующая задержка с учётом потолка Max.
func (p Policy) next(current time.Duration) time.Duration {
	current *= 2
	if p.Max > 0 && current > p.Max {
		return p.Max
	}
	return current
}

// withJitterEqual — половина задержки фиксирована, вторая — случайная.
// Глобальный rand защищён внутренним локом, поэтому одну политику можно
// безопасно использовать из параллельных запросов.
func (p Policy) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(rand.Int63n(int64(d-half) + 1))
	return half + jitter
}
