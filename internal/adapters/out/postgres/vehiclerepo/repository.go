// Package vehiclerepo reads the vehicle type catalogue.
package vehiclerepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/pgerr"

	"gorm.io/gorm"
)

type VehicleTypeDTO struct {
	Key        string `gorm:"primaryKey"`
	Name       string
	BaseFare   float64
	PricePerKm float64
	Capacity   int
	IsActive   bool
}

func (VehicleTypeDTO) TableName() string {
	return "vehicle_types"
}

// GormVehicleRepository implements ports.VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GORM vehicle repository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// GetActiveByType treats inactive types as missing.
func (r *GormVehicleRepository) GetActiveByType(ctx context.Context, vehicleType string) (*vehicle.VehicleType, error) {
	var dto VehicleTypeDTO
	err := r.db.WithContext(ctx).Take(&dto, "key = ? AND is_active", vehicleType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("vehicleType", vehicleType)
	}
	if err != nil {
		return nil, pgerr.Translate("get vehicle type", err)
	}

	return toDomain(dto)
}

// List returns the active catalogue ordered by base fare.
func (r *GormVehicleRepository) List(ctx context.Context) ([]*vehicle.VehicleType, error) {
	var dtos []VehicleTypeDTO
	if err := r.db.WithContext(ctx).Where("is_active").Order("base_fare, key").Find(&dtos).Error; err != nil {
		return nil, pgerr.Translate("list vehicle types", err)
	}

	types := make([]*vehicle.VehicleType, 0, len(dtos))
	for _, dto := range dtos {
		v, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		types = append(types, v)
	}
	return types, nil
}

func toDomain(dto VehicleTypeDTO) (*vehicle.VehicleType, error) {
	return vehicle.RestoreVehicleType(dto.Key, dto.Name, dto.BaseFare, dto.PricePerKm, dto.Capacity, dto.IsActive)
}
