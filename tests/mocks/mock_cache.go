package mocks

import (
	"context"
	"time"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStore stands in for the redis key-value store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockStore) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

type MockScenarioCache struct {
	mock.Mock
}

func (m *MockScenarioCache) Get(ctx context.Context, ownerID int64) ([]domain.RateScenario, bool) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]domain.RateScenario), args.Bool(1)
}

func (m *MockScenarioCache) Set(ctx context.Context, ownerID int64, scenarios []domain.RateScenario) {
	m.Called(ctx, ownerID, scenarios)
}

func (m *MockScenarioCache) Invalidate(ctx context.Context, ownerIDs ...int64) error {
	args := m.Called(ctx, ownerIDs)
	return args.Error(0)
}
