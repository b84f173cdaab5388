package driverrepo

import (
	"context"
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/pgerr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDriverRepository implements ports.DriverRepository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewGormDriverRepository creates a GORM driver repository.
//
// Pass the root *gorm.DB for standalone reads such as the nearby search, or a transaction
// handle when the repository takes part in a unit of work. Every write bumps the version
// column, and Reserve only succeeds at the version the driver was loaded with.
//
// Example:
//
//	repo := driverrepo.NewGormDriverRepository(db)
//	drivers, err := repo.FindAssignableInCells(ctx, point.SearchCells(6))
func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// Add inserts a driver. Registration lives outside this service; Add serves seeding and tests.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate("insert driver", err)
	}
	return nil
}

func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *GormDriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormDriverRepository) get(_ context.Context, db *gorm.DB, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := db.Take(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id)
		}
		return nil, pgerr.Translate("get driver", err)
	}

	return toDomain(dto)
}

// Update is last-writer-wins; callers hold the row lock from GetForUpdate.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	values := dto.columns()
	values["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).Model(&DriverDTO{}).Where("id = ?", dto.ID).Updates(values)
	if result.Error != nil {
		return pgerr.Translate("update driver", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("driver", aggregate.ID())
	}

	aggregate.MarkPersisted()
	return nil
}

// Reserve writes the reserved driver only while the stored row is still available at the
// version it was loaded with. Of several concurrent reservations exactly one matches.
func (r *GormDriverRepository) Reserve(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	values := dto.columns()
	values["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ? AND is_available = ? AND version = ?", dto.ID, true, aggregate.Version()).
		Updates(values)
	if result.Error != nil {
		return pgerr.Translate("reserve driver", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewConflictError("Driver is not available")
	}

	aggregate.MarkPersisted()
	return nil
}

// FindAssignableInCells returns available, verified, active, unblocked drivers whose
// geohash falls inside one of cells.
func (r *GormDriverRepository) FindAssignableInCells(ctx context.Context, cells []string) ([]*driver.Driver, error) {
	if len(cells) == 0 {
		return nil, nil
	}

	prefixes := make([]string, 0, len(cells))
	args := make([]any, 0, len(cells))
	for _, cell := range cells {
		prefixes = append(prefixes, "geohash LIKE ?")
		args = append(args, cell+"%")
	}

	var dtos []DriverDTO
	err := r.db.WithContext(ctx).
		Where("is_available AND is_active AND NOT is_blocked AND verification_status = ?",
			driver.VerificationVerified.String()).
		Where("("+strings.Join(prefixes, " OR ")+")", args...).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate("find assignable drivers", err)
	}

	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}
