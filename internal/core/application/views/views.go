// Package views holds the resolved read models returned by commands and queries and carried
// by events. They are plain JSON-tagged structs with no behaviour beyond construction.
package views

import (
	"time"

	"dispatch/internal/core/domain/model/customer"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
)

type PartySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type DriverSummary struct {
	PartySummary
	VehicleType   string `json:"vehicleType,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
}

type StopView struct {
	Address string `json:"address"`
	// Coordinates is [lng, lat].
	Coordinates [2]float64 `json:"coordinates"`
	Type        string     `json:"type"`
}

type LocationsView struct {
	Pickup  StopView `json:"pickup"`
	Dropoff StopView `json:"dropoff"`
}

type FareView struct {
	BaseFare       float64 `json:"baseFare"`
	DistanceCharge float64 `json:"distanceCharge"`
	TimeCharge     float64 `json:"timeCharge"`
	Total          float64 `json:"total"`
	Commission     float64 `json:"commission"`
}

type OrderView struct {
	ID                 string         `json:"id"`
	BookingID          string         `json:"bookingId"`
	CustomerID         string         `json:"customerId"`
	Customer           *PartySummary  `json:"customer,omitempty"`
	DriverID           *string        `json:"driverId"`
	Driver             *DriverSummary `json:"driver,omitempty"`
	VehicleType        string         `json:"vehicleType"`
	Locations          LocationsView  `json:"locations"`
	Distance           float64        `json:"distance"`
	Fare               FareView       `json:"fare"`
	Status             string         `json:"status"`
	Notes              string         `json:"notes,omitempty"`
	AssignedBy         *string        `json:"assignedBy"`
	AssignedAt         *time.Time     `json:"assignedAt,omitempty"`
	StartedAt          *time.Time     `json:"startedAt,omitempty"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	CancelledAt        *time.Time     `json:"cancelledAt,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Version            int64          `json:"version"`
}

type DriverView struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Phone              string      `json:"phone"`
	VehicleType        string      `json:"vehicleType"`
	VehicleNumber      string      `json:"vehicleNumber"`
	IsAvailable        bool        `json:"isAvailable"`
	IsOnline           bool        `json:"isOnline"`
	IsActive           bool        `json:"isActive"`
	IsBlocked          bool        `json:"isBlocked"`
	VerificationStatus string      `json:"verificationStatus"`
	CurrentLocation    *[2]float64 `json:"currentLocation,omitempty"`
	LocationUpdatedAt  *time.Time  `json:"locationUpdatedAt,omitempty"`
	Version            int64       `json:"version"`
}

// NewOrderView resolves o together with its parties. c and d may be nil when unknown.
func NewOrderView(o *order.Order, c *customer.Customer, d *driver.Driver) OrderView {
	fare := o.Fare()
	locations := o.Locations()

	v := OrderView{
		ID:          o.ID().String(),
		BookingID:   o.BookingID().String(),
		CustomerID:  o.CustomerID().String(),
		VehicleType: o.VehicleType(),
		Locations: LocationsView{
			Pickup:  newStopView(locations.Pickup),
			Dropoff: newStopView(locations.Dropoff),
		},
		Distance: o.DistanceKm(),
		Fare: FareView{
			BaseFare:       fare.Base(),
			DistanceCharge: fare.DistanceCharge(),
			TimeCharge:     fare.TimeCharge(),
			Total:          fare.Total(),
			Commission:     fare.Commission(),
		},
		Status:             o.Status().String(),
		Notes:              o.Notes(),
		AssignedAt:         o.AssignedAt(),
		StartedAt:          o.StartedAt(),
		CompletedAt:        o.CompletedAt(),
		CancelledAt:        o.CancelledAt(),
		CancellationReason: o.CancellationReason(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
		Version:            o.Version(),
	}

	if id := o.DriverID(); id != nil {
		s := id.String()
		v.DriverID = &s
	}
	if id := o.AssignedBy(); id != nil {
		s := id.String()
		v.AssignedBy = &s
	}
	if c != nil && c.ID().IsEqual(o.CustomerID()) {
		v.Customer = &PartySummary{ID: c.ID().String(), Name: c.Name(), Phone: c.Phone()}
	}
	if d != nil && o.HasDriver(d.ID()) {
		v.Driver = &DriverSummary{
			PartySummary:  PartySummary{ID: d.ID().String(), Name: d.Name(), Phone: d.Phone()},
			VehicleType:   d.VehicleType(),
			VehicleNumber: d.VehicleNumber(),
		}
	}

	return v
}

func NewDriverView(d *driver.Driver) DriverView {
	v := DriverView{
		ID:                 d.ID().String(),
		Name:               d.Name(),
		Phone:              d.Phone(),
		VehicleType:        d.VehicleType(),
		VehicleNumber:      d.VehicleNumber(),
		IsAvailable:        d.IsAvailable(),
		IsOnline:           d.IsOnline(),
		IsActive:           d.IsActive(),
		IsBlocked:          d.IsBlocked(),
		VerificationStatus: d.Verification().String(),
		LocationUpdatedAt:  d.LocationUpdatedAt(),
		Version:            d.Version(),
	}
	if p := d.Location(); p != nil {
		coords := p.Coordinates()
		v.CurrentLocation = &coords
	}
	return v
}

func newStopView(s order.Stop) StopView {
	return StopView{
		Address:     s.Address(),
		Coordinates: s.Point().Coordinates(),
		Type:        string(s.Kind()),
	}
}
