// Package driverrepo maps Driver aggregates to the drivers table.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO is one row of the drivers table. The geohash column is derived from the
// location at write time and serves the nearby-driver lookups.
type DriverDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string
	Phone              string `gorm:"uniqueIndex"`
	VehicleType        string
	VehicleNumber      string
	IsAvailable        bool
	VerificationStatus string
	IsActive           bool
	IsBlocked          bool
	LocationLat        *float64
	LocationLng        *float64
	Geohash            *string `gorm:"index"`
	LocationUpdatedAt  *time.Time
	ConnectionID       *string
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
	Version            int64
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:                 d.ID().Google(),
		Name:               d.Name(),
		Phone:              d.Phone(),
		VehicleType:        d.VehicleType(),
		VehicleNumber:      d.VehicleNumber(),
		IsAvailable:        d.IsAvailable(),
		VerificationStatus: d.Verification().String(),
		IsActive:           d.IsActive(),
		IsBlocked:          d.IsBlocked(),
		LocationUpdatedAt:  d.LocationUpdatedAt(),
		ConnectionID:       d.ConnectionID(),
		CreatedAt:          d.CreatedAt(),
		UpdatedAt:          d.UpdatedAt(),
		Version:            d.Version(),
	}

	if p := d.Location(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		hash := p.Geohash(kernel.GeohashPrecision)
		dto.LocationLat, dto.LocationLng, dto.Geohash = &lat, &lng, &hash
	}

	return dto
}

// columns lists every mutable column for a last-writer-wins update.
func (dto DriverDTO) columns() map[string]any {
	return map[string]any{
		"name":                dto.Name,
		"phone":               dto.Phone,
		"vehicle_type":        dto.VehicleType,
		"vehicle_number":      dto.VehicleNumber,
		"is_available":        dto.IsAvailable,
		"verification_status": dto.VerificationStatus,
		"is_active":           dto.IsActive,
		"is_blocked":          dto.IsBlocked,
		"location_lat":        dto.LocationLat,
		"location_lng":        dto.LocationLng,
		"geohash":             dto.Geohash,
		"location_updated_at": dto.LocationUpdatedAt,
		"connection_id":       dto.ConnectionID,
		"updated_at":          dto.UpdatedAt,
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	verification, err := driver.ParseVerificationStatus(dto.VerificationStatus)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.LocationLat != nil && dto.LocationLng != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.LocationLat, *dto.LocationLng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &p
	}

	return driver.RestoreDriver(driver.Snapshot{
		ID:                id,
		Name:              dto.Name,
		Phone:             dto.Phone,
		VehicleType:       dto.VehicleType,
		VehicleNumber:     dto.VehicleNumber,
		Available:         dto.IsAvailable,
		Verification:      verification,
		Active:            dto.IsActive,
		Blocked:           dto.IsBlocked,
		Location:          location,
		LocationUpdatedAt: dto.LocationUpdatedAt,
		ConnectionID:      dto.ConnectionID,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		Version:           dto.Version,
	})
}
