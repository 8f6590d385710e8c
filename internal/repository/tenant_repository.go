package repository

import (
	"context"
	"errors"

	"github.com/suteetoe/saasbase/internal/model"
	"gorm.io/gorm"
)

// ErrTenantNotFound is returned when no tenant exists for the requested slug
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository defines the tenant lookup used by the resolver middleware
type TenantRepository interface {
	// GetBySlug retrieves an active tenant by its slug
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

// GormTenantRepository implements TenantRepository on the shared gorm handle
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// GetBySlug retrieves an active tenant by its slug
func (r *GormTenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	result := r.db.WithContext(ctx).Where("slug = ? AND active = ?", slug, true).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, result.Error
	}
	return &tenant, nil
}
