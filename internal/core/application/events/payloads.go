package events

import (
	"time"

	"dispatch/internal/core/application/views"
)

type OrderPayload struct {
	Order views.OrderView `json:"order"`
}

type OrderStatusChangedPayload struct {
	Order          views.OrderView `json:"order"`
	PreviousStatus string          `json:"previousStatus"`
	NewStatus      string          `json:"newStatus"`
}

type OrderCancelledPayload struct {
	Order          views.OrderView `json:"order"`
	PreviousStatus string          `json:"previousStatus"`
	Reason         string          `json:"reason"`
}

type OrderDeletedPayload struct {
	OrderID   string `json:"orderId"`
	BookingID string `json:"bookingId"`
}

type DriverPayload struct {
	Driver views.DriverView `json:"driver"`
}

type DriverLocationPayload struct {
	DriverID string `json:"driverId"`
	// Coordinates is [lng, lat].
	Coordinates [2]float64 `json:"coordinates"`
	Geohash     string     `json:"geohash"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type DashboardStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	ActiveOrders    int64 `json:"activeOrders"`
	CompletedOrders int64 `json:"completedOrders"`
	TotalDrivers    int64 `json:"totalDrivers"`
	OnlineDrivers   int64 `json:"onlineDrivers"`
	TotalCustomers  int64 `json:"totalCustomers"`
	TodayOrders     int64 `json:"todayOrders"`
}
