package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sanzeeb3/mailercloud-go/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("502 bad gateway")
	errFatal     = errors.New("401 unauthorized")
)

// script returns fn's results in order, repeating the last one.
func script(results ...error) (RetriableFn, *int) {
	calls := 0
	return func(attempt int) (error, ExitStrategy) {
		calls++
		err := results[min(attempt, len(results)-1)]
		if errors.Is(err, errFatal) {
			return err, StopNow
		}
		return err, Continue
	}, &calls
}

func Test_expoRetry_Do(t *testing.T) {
	testCases := []struct {
		name      string
		attempts  int
		results   []error
		expectErr error
		calls     int
	}{
		{name: "first try succeeds", attempts: 3, results: []error{nil}, calls: 1},
		{name: "succeeds after transient failure", attempts: 3, results: []error{errTransient, nil}, calls: 2},
		{name: "single attempt never retries", attempts: 1, results: []error{errTransient}, expectErr: errTransient, calls: 1},
		{name: "exhausts attempts", attempts: 3, results: []error{errTransient}, expectErr: errTransient, calls: 3},
		{name: "stop now ends early", attempts: 5, results: []error{errTransient, errFatal}, expectErr: errFatal, calls: 2},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			fn, calls := script(tt.results...)
			err := makeExpoRetry().Do(context.Background(), tt.attempts, "contacts", fn)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, *calls)
		})
	}
}

func Test_expoRetry_Do_attemptNumbers(t *testing.T) {
	var seen []int
	_ = makeExpoRetry().Do(context.Background(), 3, "contacts", func(attempt int) (error, ExitStrategy) {
		seen = append(seen, attempt)
		return errTransient, Continue
	})
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func Test_expoRetry_Do_zeroAttempts(t *testing.T) {
	err := makeExpoRetry().Do(context.Background(), 0, "contacts", func(int) (error, ExitStrategy) {
		assert.Fail(t, "fn must not run")
		return nil, StopNow
	})
	assert.Error(t, err)
}

func Test_expoRetry_Do_contextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	r := NewExponentialRetry(WithInitialDuration(time.Hour))
	start := time.Now()
	err := r.Do(ctx, 3, "lists/search", func(int) (error, ExitStrategy) {
		calls++
		cancel()
		return errTransient, Continue
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}

func Test_expoRetry_backoffIsCapped(t *testing.T) {
	var lines []string
	log := &captureLogger{lines: &lines}

	r := NewExponentialRetry(
		WithInitialDuration(time.Millisecond),
		WithMaxDuration(2*time.Millisecond),
		WithLogger(log),
	)
	fn, _ := script(errTransient)
	require.Error(t, r.Do(context.Background(), 4, "contacts", fn))

	require.Len(t, lines, 4, "3 retries + give up")
	assert.Contains(t, lines[0], "backoff=1ms")
	assert.Contains(t, lines[1], "backoff=2ms")
	assert.Contains(t, lines[2], "backoff=2ms")
	assert.Contains(t, lines[3], "Giving up on contacts")
}

type captureLogger struct {
	logger.Noop
	lines *[]string
}

func (c *captureLogger) Warnf(format string, args ...any) {
	*c.lines = append(*c.lines, fmt.Sprintf(format, args...))
}

func makeExpoRetry() *expoRetry {
	return NewExponentialRetry(WithInitialDuration(0)).(*expoRetry)
}
