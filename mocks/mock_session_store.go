package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockSessionStore is a mock implementation of port.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) IncrementFailures(ctx context.Context, username string, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, username, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionStore) ResetFailures(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockSessionStore) Lock(ctx context.Context, username string, ttl time.Duration) error {
	args := m.Called(ctx, username, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Unlock(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockSessionStore) LockedFor(ctx context.Context, username string) (time.Duration, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockSessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
