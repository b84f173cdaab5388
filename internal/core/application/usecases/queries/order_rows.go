// Package queries contains the read-only operations. Handlers run raw SQL through gorm and
// return views directly, without loading aggregates.
package queries

import (
	"context"
	"time"

	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/pgerr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderSelect resolves each order with its customer and driver. Append WHERE/ORDER clauses.
const orderSelect = `
	SELECT
		o.id, o.booking_id, o.customer_id, o.driver_id, o.vehicle_type,
		o.pickup_address, o.pickup_lat, o.pickup_lng,
		o.dropoff_address, o.dropoff_lat, o.dropoff_lng,
		o.distance_km,
		o.fare_base, o.fare_distance_charge, o.fare_time_charge, o.fare_total, o.fare_commission,
		o.status, o.notes, o.assigned_by,
		o.assigned_at, o.started_at, o.completed_at, o.cancelled_at, o.cancellation_reason,
		o.created_at, o.updated_at, o.version,
		c.name AS customer_name, c.phone AS customer_phone,
		d.name AS driver_name, d.phone AS driver_phone,
		d.vehicle_type AS driver_vehicle_type, d.vehicle_number AS driver_vehicle_number
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id
	LEFT JOIN drivers d ON d.id = o.driver_id`

type orderRow struct {
	ID                  uuid.UUID
	BookingID           string
	CustomerID          uuid.UUID
	DriverID            *uuid.UUID
	VehicleType         string
	PickupAddress       string
	PickupLat           float64
	PickupLng           float64
	DropoffAddress      string
	DropoffLat          float64
	DropoffLng          float64
	DistanceKm          float64
	FareBase            float64
	FareDistanceCharge  float64
	FareTimeCharge      float64
	FareTotal           float64
	FareCommission      float64
	Status              string
	Notes               string
	AssignedBy          *uuid.UUID
	AssignedAt          *time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CancellationReason  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
	CustomerName        *string
	CustomerPhone       *string
	DriverName          *string
	DriverPhone         *string
	DriverVehicleType   *string
	DriverVehicleNumber *string
}

func (r orderRow) view() views.OrderView {
	v := views.OrderView{
		ID:          r.ID.String(),
		BookingID:   r.BookingID,
		CustomerID:  r.CustomerID.String(),
		VehicleType: r.VehicleType,
		Locations: views.LocationsView{
			Pickup: views.StopView{
				Address:     r.PickupAddress,
				Coordinates: [2]float64{r.PickupLng, r.PickupLat},
				Type:        string(order.PickupStop),
			},
			Dropoff: views.StopView{
				Address:     r.DropoffAddress,
				Coordinates: [2]float64{r.DropoffLng, r.DropoffLat},
				Type:        string(order.DropoffStop),
			},
		},
		Distance: r.DistanceKm,
		Fare: views.FareView{
			BaseFare:       r.FareBase,
			DistanceCharge: r.FareDistanceCharge,
			TimeCharge:     r.FareTimeCharge,
			Total:          r.FareTotal,
			Commission:     r.FareCommission,
		},
		Status:             r.Status,
		Notes:              r.Notes,
		AssignedAt:         r.AssignedAt,
		StartedAt:          r.StartedAt,
		CompletedAt:        r.CompletedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Version:            r.Version,
	}

	if r.CustomerName != nil {
		v.Customer = &views.PartySummary{
			ID:    r.CustomerID.String(),
			Name:  *r.CustomerName,
			Phone: deref(r.CustomerPhone),
		}
	}

	if r.DriverID != nil {
		id := r.DriverID.String()
		v.DriverID = &id
		if r.DriverName != nil {
			v.Driver = &views.DriverSummary{
				PartySummary:  views.PartySummary{ID: id, Name: *r.DriverName, Phone: deref(r.DriverPhone)},
				VehicleType:   deref(r.DriverVehicleType),
				VehicleNumber: deref(r.DriverVehicleNumber),
			}
		}
	}

	if r.AssignedBy != nil {
		by := r.AssignedBy.String()
		v.AssignedBy = &by
	}

	return v
}

// scanOrders runs orderSelect with the given tail and args.
func scanOrders(ctx context.Context, db *gorm.DB, tail string, args ...any) ([]views.OrderView, error) {
	var rows []orderRow
	if err := db.WithContext(ctx).Raw(orderSelect+" "+tail, args...).Scan(&rows).Error; err != nil {
		return nil, pgerr.Translate("query orders", err)
	}

	result := make([]views.OrderView, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.view())
	}
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
