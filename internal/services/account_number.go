package services

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/ruralpay/ledger/internal/config"
)

// AccountNumberGenerator proposes candidate account numbers. Uniqueness is
// enforced by the store, not here.
type AccountNumberGenerator interface {
	Generate() (string, error)
}

// RandomAccountNumberGenerator builds fixed-length numbers of the form
// prefix + random characters from charset.
type RandomAccountNumberGenerator struct {
	length  int
	prefix  string
	charset string
}

func NewRandomAccountNumberGenerator(cfg config.LedgerConfig) (*RandomAccountNumberGenerator, error) {
	if cfg.AccountNumberCharset == "" {
		return nil, errors.New("account number charset is empty")
	}
	if cfg.AccountNumberLength <= len(cfg.AccountNumberPrefix) {
		return nil, errors.New("account number length must exceed prefix length")
	}
	return &RandomAccountNumberGenerator{
		length:  cfg.AccountNumberLength,
		prefix:  cfg.AccountNumberPrefix,
		charset: cfg.AccountNumberCharset,
	}, nil
}

func (g *RandomAccountNumberGenerator) Generate() (string, error) {
	code := make([]byte, g.length)
	copy(code, g.prefix)
	charsetLen := big.NewInt(int64(len(g.charset)))

	for i := len(g.prefix); i < g.length; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		code[i] = g.charset[n.Int64()]
	}

	return string(code), nil
}
