package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rangershop/backend/internal/imagesearch"
	"github.com/rangershop/backend/pkg/db/models"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
	"github.com/rangershop/backend/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes catalog management and storefront operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) (*ProductListResult, error)
	IncrementStock(ctx context.Context, id uuid.UUID, n int) (*ProductDTO, error)
	DecrementStock(ctx context.Context, id uuid.UUID, n int) (*ProductDTO, error)
}

type service struct {
	repo   *Repository
	images imagesearch.Finder
	logg   *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, images imagesearch.Finder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image finder required")
	}
	return &service{repo: repo, images: images, logg: logg}, nil
}

// Create validates and persists a new product. When no image is supplied the
// catalog looks one up by product name; lookup failures never block creation.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	image := strings.TrimSpace(input.Image)
	if image == "" {
		image = s.lookupImage(ctx, name)
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Image:       image,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Quantity:    input.Quantity,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return FromModel(created), nil
}

// Get loads a single product for management views.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return FromModel(product), nil
}

// Update applies the provided fields to the product.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Image != nil {
		product.Image = strings.TrimSpace(*input.Image)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = input.Price.Round(2)
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return FromModel(updated), nil
}

// Delete removes the product from the catalog.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// List returns storefront views newest first.
func (s *service) List(ctx context.Context, query ListQuery) (*ProductListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	views := make([]ProductView, 0, len(rows))
	for i := range rows {
		views = append(views, ViewFromModel(&rows[i]))
	}
	return &ProductListResult{Products: views, NextCursor: nextCursor}, nil
}

// IncrementStock atomically returns n units of stock and reloads the product.
func (s *service) IncrementStock(ctx context.Context, id uuid.UUID, n int) (*ProductDTO, error) {
	if n <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.IncrementQuantity(ctx, id, n); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment stock")
	}
	return s.Get(ctx, id)
}

// DecrementStock removes n units of stock. The guarded update rejects
// oversells with a conflict instead of driving quantity negative.
func (s *service) DecrementStock(ctx context.Context, id uuid.UUID, n int) (*ProductDTO, error) {
	if n <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	ok, err := s.repo.DecrementQuantity(ctx, id, n)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
	}
	return s.Get(ctx, id)
}

func (s *service) lookupImage(ctx context.Context, name string) string {
	result, err := s.images.FindImage(ctx, name)
	switch result.State {
	case imagesearch.StateFound:
		return result.URL
	case imagesearch.StateNotFound:
		if s.logg != nil {
			s.logg.Debug(s.logg.WithField(ctx, "product_name", name), "no image found for product")
		}
	case imagesearch.StateUnavailable:
		if s.logg != nil {
			fields := map[string]any{"product_name": name}
			if err != nil {
				fields["lookup_error"] = err.Error()
			}
			s.logg.Warn(s.logg.WithFields(ctx, fields), "image search unavailable, creating product without image")
		}
	}
	return ""
}
