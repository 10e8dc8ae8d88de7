package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cargoline/apiserver/types"
	"github.com/google/uuid"
)

// BrandRepository handles persistence for brands.
type BrandRepository struct {
	db *sql.DB
}

func NewBrandRepository(db *sql.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) List(ctx context.Context) ([]types.Brand, error) {
	const query = `SELECT id, name, created_at, updated_at FROM brands`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := make([]types.Brand, 0)
	for rows.Next() {
		var brand types.Brand
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, brand)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return brands, nil
}

func (r *BrandRepository) Get(ctx context.Context, id uuid.UUID) (types.Brand, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM brands
		WHERE id = $1`
	var brand types.Brand
	err := r.db.QueryRowContext(ctx, query, id).Scan(&brand.ID, &brand.Name, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Brand{}, ErrNotFound
		}
		return types.Brand{}, err
	}
	return brand, nil
}

// Create inserts brand as given; the caller assigns the id and timestamps.
func (r *BrandRepository) Create(ctx context.Context, brand types.Brand) (types.Brand, error) {
	const query = `
		INSERT INTO brands (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.CreatedAt, brand.UpdatedAt); err != nil {
		return types.Brand{}, classify(err)
	}
	return brand, nil
}

// Update sets the name and updated_at of brand.ID and returns the stored row.
// updated_at always lands strictly after created_at, even when brand.UpdatedAt
// does not (same microsecond as the insert, or a clock step backwards).
func (r *BrandRepository) Update(ctx context.Context, brand types.Brand) (types.Brand, error) {
	const query = `
		UPDATE brands
		SET name = $1,
			updated_at = GREATEST($2::timestamptz, created_at + interval '1 microsecond')
		WHERE id = $3
		RETURNING id, name, created_at, updated_at`
	var updated types.Brand
	err := r.db.QueryRowContext(ctx, query, brand.Name, brand.UpdatedAt, brand.ID).Scan(
		&updated.ID,
		&updated.Name,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Brand{}, ErrNotFound
		}
		return types.Brand{}, err
	}
	return updated, nil
}
