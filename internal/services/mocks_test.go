package services

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type MockAccountNumberGenerator struct {
	mock.Mock
}

func (m *MockAccountNumberGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func quietLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
