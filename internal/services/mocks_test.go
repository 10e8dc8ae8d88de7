package services

import (
	"context"

	"github.com/cargoline/apiserver/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetLoginRecord(ctx context.Context, username string) (types.LoginRecord, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(types.LoginRecord), args.Error(1)
}

func (m *MockUserRepository) CreateClientAccount(ctx context.Context, account types.ClientAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(encoded, password string) error {
	args := m.Called(encoded, password)
	return args.Error(0)
}

type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) List(ctx context.Context) ([]types.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Brand), args.Error(1)
}

func (m *MockBrandRepository) Get(ctx context.Context, id uuid.UUID) (types.Brand, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Brand), args.Error(1)
}

func (m *MockBrandRepository) Create(ctx context.Context, brand types.Brand) (types.Brand, error) {
	args := m.Called(ctx, brand)
	if fn, ok := args.Get(0).(func(context.Context, types.Brand) types.Brand); ok {
		return fn(ctx, brand), args.Error(1)
	}
	return args.Get(0).(types.Brand), args.Error(1)
}

func (m *MockBrandRepository) Update(ctx context.Context, brand types.Brand) (types.Brand, error) {
	args := m.Called(ctx, brand)
	return args.Get(0).(types.Brand), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, channel, eventType string, payload any) error {
	args := m.Called(ctx, channel, eventType, payload)
	return args.Error(0)
}
