package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"photosession/internal/pkg/apperror"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePackage(ctx context.Context, p *Package) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) GetPackage(ctx context.Context, id int64) (*Package, error) {
	var p Package
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrapf(ErrPackageNotFound, "id %d", id)
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// GetServices loads active services by id. A missing id is reported as
// ErrServiceNotFound naming it.
func (r *Repository) GetServices(ctx context.Context, ids []int64) (map[int64]Service, error) {
	var services []Service
	if len(ids) > 0 {
		err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&services).Error
		if err != nil {
			return nil, fmt.Errorf("get services: %w", err)
		}
	}

	out := make(map[int64]Service, len(services))
	for _, s := range services {
		out[s.ID] = s
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, apperror.Wrapf(ErrServiceNotFound, "id %d", id)
		}
	}
	return out, nil
}

func (r *Repository) ListPackages(ctx context.Context) ([]Package, error) {
	var packages []Package
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&packages).Error
	return packages, err
}

func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&services).Error
	return services, err
}
