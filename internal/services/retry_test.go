package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConflict = errors.New("conflict")

func TestRetryOnConflict(t *testing.T) {
	isConflict := func(err error) bool { return errors.Is(err, errConflict) }

	sequence := func(values ...string) func() (string, error) {
		i := 0
		return func() (string, error) {
			v := values[i%len(values)]
			i++
			return v, nil
		}
	}

	t.Run("returns first success", func(t *testing.T) {
		var tried []string
		got, err := RetryOnConflict(5, sequence("a", "b", "c"), func(c string) (string, error) {
			tried = append(tried, c)
			if c == "c" {
				return "ok:" + c, nil
			}
			return "", errConflict
		}, isConflict)

		require.NoError(t, err)
		assert.Equal(t, "ok:c", got)
		assert.Equal(t, []string{"a", "b", "c"}, tried)
	})

	t.Run("exhaustion wraps the last conflict", func(t *testing.T) {
		calls := 0
		_, err := RetryOnConflict(2, sequence("a"), func(string) (int, error) {
			calls++
			return 0, errConflict
		}, isConflict)

		assert.Equal(t, 2, calls)
		assert.ErrorIs(t, err, ErrAccountNumberExhausted)
		assert.ErrorIs(t, err, errConflict)
	})

	t.Run("other errors stop immediately", func(t *testing.T) {
		calls := 0
		_, err := RetryOnConflict(5, sequence("a"), func(string) (int, error) {
			calls++
			return 0, assert.AnError
		}, isConflict)

		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("candidate failure", func(t *testing.T) {
		_, err := RetryOnConflict(5, func() (string, error) { return "", assert.AnError },
			func(string) (int, error) { return 1, nil }, isConflict)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
