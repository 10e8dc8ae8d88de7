package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargoline/apiserver/internal/mq"
	"github.com/cargoline/apiserver/internal/store"
	"github.com/cargoline/apiserver/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BrandRepository defines persistence operations for brands.
type BrandRepository interface {
	List(ctx context.Context) ([]types.Brand, error)
	Get(ctx context.Context, id uuid.UUID) (types.Brand, error)
	Create(ctx context.Context, brand types.Brand) (types.Brand, error)
	Update(ctx context.Context, brand types.Brand) (types.Brand, error)
}

// BrandService encapsulates brand use-cases.
type BrandService struct {
	repo    BrandRepository
	events  EventPublisher
	channel string
	now     func() time.Time
}

func NewBrandService(repo BrandRepository, events EventPublisher, channel string) *BrandService {
	return &BrandService{
		repo:    repo,
		events:  events,
		channel: channel,
		now:     timestamp,
	}
}

func (s *BrandService) GetAllBrands(ctx context.Context) ([]types.Brand, error) {
	brands, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	if brands == nil {
		brands = []types.Brand{}
	}
	return brands, nil
}

// GetBrand returns nil without an error when no brand has the id.
func (s *BrandService) GetBrand(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	brand, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand %s: %w", id, err)
	}
	return &brand, nil
}

func (s *BrandService) CreateBrand(ctx context.Context, name string) (types.Brand, error) {
	now := s.now()
	brand, err := s.repo.Create(ctx, types.Brand{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return types.Brand{}, fmt.Errorf("create brand: %w", err)
	}

	log.Ctx(ctx).Info().Str("brand_id", brand.ID.String()).Msg("brand created")
	publish(ctx, s.events, s.channel, mq.EventBrandCreated, brand)
	return brand, nil
}

// UpdateBrand renames the brand and bumps updated_at. It returns nil
// without an error when no brand has the id.
func (s *BrandService) UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*types.Brand, error) {
	brand, err := s.repo.Update(ctx, types.Brand{
		ID:        id,
		Name:      name,
		UpdatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("update brand %s: %w", id, err)
	}

	log.Ctx(ctx).Info().Str("brand_id", brand.ID.String()).Msg("brand updated")
	publish(ctx, s.events, s.channel, mq.EventBrandUpdated, brand)
	return &brand, nil
}
