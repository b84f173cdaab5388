package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/pgerr"

	"gorm.io/gorm"
)

const bookingIDConstraint = "orders_booking_id_key"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a GORM order repository. Updates only apply at the
// version the order was loaded with.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order. A booking id collision is reported as a conflict wrapping
// ports.ErrBookingIDTaken.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err, bookingIDConstraint) {
			return errs.NewConflictErrorWithCause(
				fmt.Sprintf("booking id %s is already taken", dto.BookingID), errors.Join(ports.ErrBookingIDTaken, err))
		}
		return pgerr.Translate("insert order", err)
	}

	return nil
}

// Update writes the aggregate only while the stored row still carries the status and version
// it was loaded with.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	expectedStatus, expectedVersion := aggregate.ExpectedState()

	dto := fromDomain(aggregate)
	dto.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND version = ?", dto.ID, expectedStatus.String(), expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate("update order", result.Error)
	}

	if result.RowsAffected == 0 {
		return r.staleWrite(ctx, aggregate.ID())
	}

	aggregate.MarkPersisted()
	return nil
}

// staleWrite explains why a conditional update matched no row.
func (r *GormOrderRepository) staleWrite(ctx context.Context, id kernel.UUID) error {
	var current struct{ Status string }
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).Select("status").Where("id = ?", id.Google()).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", id)
	}
	if err != nil {
		return pgerr.Translate("reload order status", err)
	}

	return errs.NewConflictError(fmt.Sprintf("Order was modified concurrently. Order status is %s", current.Status))
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).Take(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, pgerr.Translate("get order", err)
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", id.Google())
	if result.Error != nil {
		return pgerr.Translate("delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id)
	}
	return nil
}

func (r *GormOrderRepository) HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("driver_id = ? AND status IN ?", driverID.Google(), activeStatusNames()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, pgerr.Translate("count active orders", err)
	}
	return count > 0, nil
}

func activeStatusNames() []string {
	var names []string
	for _, s := range order.AllStatuses() {
		if s.IsActive() {
			names = append(names, s.String())
		}
	}
	return names
}
