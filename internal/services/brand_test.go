package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cargoline/apiserver/internal/mq"
	"github.com/cargoline/apiserver/internal/store"
	"github.com/cargoline/apiserver/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBrandService_GetAllBrands(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")

	now := time.Now().UTC()
	want := []types.Brand{
		{ID: uuid.New(), Name: "Volvo", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), Name: "Scania", CreatedAt: now, UpdatedAt: now},
	}
	repo.On("List", mock.Anything).Return(want, nil).Once()

	got, err := svc.GetAllBrands(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestBrandService_GetAllBrands_EmptyIsNotNil(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")

	repo.On("List", mock.Anything).Return(nil, nil).Once()

	got, err := svc.GetAllBrands(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBrandService_GetAllBrands_Error(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")
	dbErr := errors.New("connection refused")

	repo.On("List", mock.Anything).Return(nil, dbErr).Once()

	_, err := svc.GetAllBrands(context.Background())
	require.ErrorIs(t, err, dbErr)
}

func TestBrandService_GetBrand(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")
	brand := types.Brand{ID: uuid.New(), Name: "MAN"}

	repo.On("Get", mock.Anything, brand.ID).Return(brand, nil).Once()

	got, err := svc.GetBrand(context.Background(), brand.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, cmp.Diff(brand, *got))
}

func TestBrandService_GetBrand_AbsentIsNilWithoutError(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")
	id := uuid.New()

	repo.On("Get", mock.Anything, id).Return(types.Brand{}, store.ErrNotFound).Once()

	got, err := svc.GetBrand(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBrandService_GetBrand_Error(t *testing.T) {
	repo := new(MockBrandRepository)
	svc := NewBrandService(repo, nil, "brands")
	id := uuid.New()
	dbErr := errors.New("connection refused")

	repo.On("Get", mock.Anything, id).Return(types.Brand{}, dbErr).Once()

	got, err := svc.GetBrand(context.Background(), id)
	require.ErrorIs(t, err, dbErr)
	assert.Nil(t, got)
}

func TestBrandService_CreateBrand(t *testing.T) {
	repo := new(MockBrandRepository)
	events := new(MockEventPublisher)
	svc := NewBrandService(repo, events, "brands")
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.On("Create", mock.Anything, mock.MatchedBy(func(b types.Brand) bool {
		return b.ID != uuid.Nil && b.Name == "DAF" && b.CreatedAt.Equal(now) && b.UpdatedAt.Equal(now)
	})).Return(func(_ context.Context, b types.Brand) types.Brand { return b }, nil).Once()
	events.On("Publish", mock.Anything, "brands", mq.EventBrandCreated, mock.AnythingOfType("types.Brand")).Return(nil).Once()

	brand, err := svc.CreateBrand(context.Background(), "DAF")
	require.NoError(t, err)
	assert.Equal(t, "DAF", brand.Name)
	assert.NotEqual(t, uuid.Nil, brand.ID)
	assert.Equal(t, brand.CreatedAt, brand.UpdatedAt)
	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBrandService_CreateBrand_Error(t *testing.T) {
	repo := new(MockBrandRepository)
	events := new(MockEventPublisher)
	svc := NewBrandService(repo, events, "brands")
	dbErr := errors.New("connection refused")

	repo.On("Create", mock.Anything, mock.Anything).Return(types.Brand{}, dbErr).Once()

	_, err := svc.CreateBrand(context.Background(), "DAF")
	require.ErrorIs(t, err, dbErr)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBrandService_UpdateBrand(t *testing.T) {
	repo := new(MockBrandRepository)
	events := new(MockEventPublisher)
	svc := NewBrandService(repo, events, "brands")

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)
	svc.now = func() time.Time { return now }
	id := uuid.New()

	stored := types.Brand{ID: id, Name: "Iveco", CreatedAt: created, UpdatedAt: now}
	repo.On("Update", mock.Anything, types.Brand{ID: id, Name: "Iveco", UpdatedAt: now}).Return(stored, nil).Once()
	events.On("Publish", mock.Anything, "brands", mq.EventBrandUpdated, stored).Return(nil).Once()

	got, err := svc.UpdateBrand(context.Background(), id, "Iveco")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, cmp.Diff(stored, *got))
	assert.True(t, got.CreatedAt.Equal(created), "created_at must be preserved")
	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBrandService_UpdateBrand_AbsentIsNilWithoutError(t *testing.T) {
	repo := new(MockBrandRepository)
	events := new(MockEventPublisher)
	svc := NewBrandService(repo, events, "brands")
	id := uuid.New()

	repo.On("Update", mock.Anything, mock.Anything).Return(types.Brand{}, store.ErrNotFound).Once()

	got, err := svc.UpdateBrand(context.Background(), id, "Iveco")
	require.NoError(t, err)
	assert.Nil(t, got)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
