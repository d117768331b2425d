package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomAccountNumberGenerator(t *testing.T) {
	t.Run("prefix and length", func(t *testing.T) {
		g, err := NewRandomAccountNumberGenerator(testLedgerConfig())
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			n, err := g.Generate()
			require.NoError(t, err)
			assert.Len(t, n, 10)
			assert.True(t, strings.HasPrefix(n, "100"))
			assert.Empty(t, strings.Trim(n, "0123456789"))
		}
	})

	t.Run("custom charset", func(t *testing.T) {
		cfg := testLedgerConfig()
		cfg.AccountNumberPrefix = "AC"
		cfg.AccountNumberCharset = "X"
		g, err := NewRandomAccountNumberGenerator(cfg)
		require.NoError(t, err)

		n, err := g.Generate()
		require.NoError(t, err)
		assert.Equal(t, "ACXXXXXXXX", n)
	})

	t.Run("rejects impossible settings", func(t *testing.T) {
		cfg := testLedgerConfig()
		cfg.AccountNumberLength = 3
		_, err := NewRandomAccountNumberGenerator(cfg)
		assert.Error(t, err)

		cfg = testLedgerConfig()
		cfg.AccountNumberCharset = ""
		_, err = NewRandomAccountNumberGenerator(cfg)
		assert.Error(t, err)
	})
}
