// Package orderrepo maps Order aggregates to the orders table.
package orderrepo

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. Timestamps come from the aggregate, so gorm's
// automatic time tracking is off.
type OrderDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID          string     `gorm:"uniqueIndex:orders_booking_id_key"`
	CustomerID         uuid.UUID  `gorm:"type:uuid;index"`
	DriverID           *uuid.UUID `gorm:"type:uuid;index"`
	VehicleType        string
	Pickup             StopDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff            StopDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	DistanceKm         float64
	Fare               FareDTO `gorm:"embedded;embeddedPrefix:fare_"`
	Status             string  `gorm:"index"`
	Notes              string
	AssignedBy         *uuid.UUID `gorm:"type:uuid"`
	AssignedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
	Version            int64
}

func (OrderDTO) TableName() string {
	return "orders"
}

type StopDTO struct {
	Address string
	Lat     float64
	Lng     float64
}

type FareDTO struct {
	Base           float64
	DistanceCharge float64
	TimeCharge     float64
	Total          float64
	Commission     float64
}

func fromDomain(o *order.Order) OrderDTO {
	locations := o.Locations()
	fare := o.Fare()

	return OrderDTO{
		ID:          o.ID().Google(),
		BookingID:   o.BookingID().String(),
		CustomerID:  o.CustomerID().Google(),
		DriverID:    kernel.GooglePtr(o.DriverID()),
		VehicleType: o.VehicleType(),
		Pickup:      stopFromDomain(locations.Pickup),
		Dropoff:     stopFromDomain(locations.Dropoff),
		DistanceKm:  o.DistanceKm(),
		Fare: FareDTO{
			Base:           fare.Base(),
			DistanceCharge: fare.DistanceCharge(),
			TimeCharge:     fare.TimeCharge(),
			Total:          fare.Total(),
			Commission:     fare.Commission(),
		},
		Status:             o.Status().String(),
		Notes:              o.Notes(),
		AssignedBy:         kernel.GooglePtr(o.AssignedBy()),
		AssignedAt:         o.AssignedAt(),
		StartedAt:          o.StartedAt(),
		CompletedAt:        o.CompletedAt(),
		CancelledAt:        o.CancelledAt(),
		CancellationReason: o.CancellationReason(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
		Version:            o.Version(),
	}
}

func stopFromDomain(s order.Stop) StopDTO {
	return StopDTO{
		Address: s.Address(),
		Lat:     s.Point().Lat(),
		Lng:     s.Point().Lng(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, idErr := kernel.UUIDFromGoogle(dto.ID)
	customerID, customerErr := kernel.UUIDFromGoogle(dto.CustomerID)
	bookingID, bookingErr := order.ParseBookingID(dto.BookingID)
	status, statusErr := order.ParseStatus(dto.Status)
	pickup, pickupErr := stopToDomain(order.PickupStop, dto.Pickup)
	dropoff, dropoffErr := stopToDomain(order.DropoffStop, dto.Dropoff)
	if err := errors.Join(idErr, customerErr, bookingErr, statusErr, pickupErr, dropoffErr); err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:          id,
		BookingID:   bookingID,
		CustomerID:  customerID,
		DriverID:    kernel.UUIDPtr(dto.DriverID),
		VehicleType: dto.VehicleType,
		Locations:   order.Locations{Pickup: pickup, Dropoff: dropoff},
		DistanceKm:  dto.DistanceKm,
		Fare: order.RestoreFare(
			dto.Fare.Base, dto.Fare.DistanceCharge, dto.Fare.TimeCharge, dto.Fare.Total, dto.Fare.Commission,
		),
		Status:             status,
		Notes:              dto.Notes,
		AssignedBy:         kernel.UUIDPtr(dto.AssignedBy),
		AssignedAt:         dto.AssignedAt,
		StartedAt:          dto.StartedAt,
		CompletedAt:        dto.CompletedAt,
		CancelledAt:        dto.CancelledAt,
		CancellationReason: dto.CancellationReason,
		CreatedAt:          dto.CreatedAt,
		UpdatedAt:          dto.UpdatedAt,
		Version:            dto.Version,
	})
}

func stopToDomain(kind order.StopKind, dto StopDTO) (order.Stop, error) {
	point, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return order.Stop{}, err
	}
	return order.NewStop(kind, dto.Address, point)
}
