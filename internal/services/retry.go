package services

import "fmt"

// RetryOnConflict runs insert with fresh candidates until it succeeds, fails
// with a non-conflict error, or attempts run out. Conflicts are retried; any
// other error aborts immediately. Exhaustion returns ErrAccountNumberExhausted
// wrapping the last conflict.
func RetryOnConflict[T any](
	attempts int,
	candidate func() (string, error),
	insert func(candidate string) (T, error),
	isConflict func(error) bool,
) (T, error) {
	var zero T
	var lastConflict error

	for attempt := 1; attempt <= attempts; attempt++ {
		c, err := candidate()
		if err != nil {
			return zero, fmt.Errorf("generate candidate: %w", err)
		}

		result, err := insert(c)
		if err == nil {
			return result, nil
		}
		if !isConflict(err) {
			return zero, err
		}
		lastConflict = err
	}

	return zero, wrap(ErrAccountNumberExhausted, fmt.Errorf("%d attempts: %w", attempts, lastConflict))
}
