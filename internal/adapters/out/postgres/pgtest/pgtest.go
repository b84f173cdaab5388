// Package pgtest starts a disposable PostgreSQL container with the schema applied. It is
// imported only by integration tests.
package pgtest

import (
	"context"
	"time"

	"dispatch/internal/adapters/out/postgres/migrations"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is a migrated database inside a running container.
type Database struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
	DSN       string
}

// Start runs postgres:15-alpine and applies every migration.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	if err := migrations.Up(dsn); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Database{Container: container, DB: db, DSN: dsn}, nil
}

// Truncate empties the mutable tables. Seeded vehicle types stay.
func (d *Database) Truncate() error {
	return d.DB.Exec("TRUNCATE TABLE orders, drivers, customers, admins").Error
}

func (d *Database) Terminate(ctx context.Context) error {
	if d == nil || d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}

// InsertCustomer seeds a customer row and returns its id.
func (d *Database) InsertCustomer(name, phone string, blocked bool) (uuid.UUID, error) {
	id := uuid.New()
	err := d.DB.Exec(
		"INSERT INTO customers (id, name, phone, is_blocked) VALUES (?, ?, ?, ?)",
		id, name, phone, blocked,
	).Error
	return id, err
}

// DriverRow seeds a driver. Zero-valued flags produce an offline, unverified driver.
type DriverRow struct {
	Name         string
	Phone        string
	VehicleType  string
	Available    bool
	Verification string
	Blocked      bool
	Inactive     bool
	Lat, Lng     *float64
	Geohash      *string
}

// InsertDriver seeds a driver row and returns its id.
func (d *Database) InsertDriver(row DriverRow) (uuid.UUID, error) {
	id := uuid.New()
	verification := row.Verification
	if verification == "" {
		verification = "pending"
	}
	vehicleType := row.VehicleType
	if vehicleType == "" {
		vehicleType = "sedan"
	}

	err := d.DB.Exec(
		`INSERT INTO drivers (id, name, phone, vehicle_type, vehicle_number, is_available, verification_status,
			is_active, is_blocked, location_lat, location_lng, geohash)
		VALUES (?, ?, ?, ?, 'KA01AB1234', ?, ?, ?, ?, ?, ?, ?)`,
		id, row.Name, row.Phone, vehicleType, row.Available, verification,
		!row.Inactive, row.Blocked, row.Lat, row.Lng, row.Geohash,
	).Error
	return id, err
}
