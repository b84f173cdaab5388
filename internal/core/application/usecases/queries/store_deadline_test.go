package queries_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// silentServer accepts TCP connections and never writes a byte back.
func silentServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func stalledDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://dispatch:dispatch@%s/dispatch?sslmode=disable", silentServer(t))
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestQueryHandlers_StalledStoreIsUnavailable(t *testing.T) {
	db := stalledDB(t)
	opt := queries.WithStoreTimeout(200 * time.Millisecond)

	listQuery, err := queries.NewListOrdersQuery(queries.OrderFilter{}, 1, 20)
	require.NoError(t, err)
	getQuery, err := queries.NewGetOrderQuery(kernel.NewUUID())
	require.NoError(t, err)
	driverQuery, err := queries.NewListDriverOrdersQuery(kernel.NewUUID(), nil)
	require.NoError(t, err)
	customerQuery, err := queries.NewListCustomerOrdersQuery(kernel.NewUUID())
	require.NoError(t, err)
	statsQuery := queries.NewDashboardStatsQuery(time.Now())

	testCases := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"list orders", func(ctx context.Context) error {
			_, err := queries.NewListOrdersQueryHandler(db, opt).Handle(ctx, listQuery)
			return err
		}},
		{"get order", func(ctx context.Context) error {
			_, err := queries.NewGetOrderQueryHandler(db, opt).Handle(ctx, getQuery)
			return err
		}},
		{"driver orders", func(ctx context.Context) error {
			_, err := queries.NewListDriverOrdersQueryHandler(db, opt).Handle(ctx, driverQuery)
			return err
		}},
		{"customer orders", func(ctx context.Context) error {
			_, err := queries.NewListCustomerOrdersQueryHandler(db, opt).Handle(ctx, customerQuery)
			return err
		}},
		{"dashboard stats", func(ctx context.Context) error {
			_, err := queries.NewDashboardStatsQueryHandler(db, opt).Handle(ctx, statsQuery)
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() { done <- tc.run(context.Background()) }()

			select {
			case err := <-done:
				require.Error(t, err)
				assert.Equal(t, errs.KindUnavailable, errs.KindOf(err), "got %v", err)
				assert.True(t, errs.IsRetryable(err))
			case <-time.After(5 * time.Second):
				t.Fatal("query did not give up on a stalled store")
			}
		})
	}
}

func TestNearbyDriversQueryHandler_Handle_StalledFinder(t *testing.T) {
	finder := &MockFinder{}
	finder.On("FindAssignableInCells", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	query, err := queries.NewNearbyDriversQuery(12.9716, 77.5946, 5, 10)
	require.NoError(t, err)

	start := time.Now()
	_, err = queries.NewNearbyDriversQueryHandler(finder, queries.WithStoreTimeout(50*time.Millisecond)).
		Handle(context.Background(), query)

	require.Error(t, err)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	finder.AssertExpectations(t)
}

func TestNearbyDriversQueryHandler_Handle_DomainErrorPassesThrough(t *testing.T) {
	finder := &MockFinder{}
	finder.On("FindAssignableInCells", mock.Anything, mock.Anything).
		Return([]*driver.Driver(nil), errs.NewConflictError("index is rebuilding")).Once()

	query, err := queries.NewNearbyDriversQuery(12.9716, 77.5946, 5, 10)
	require.NoError(t, err)

	_, err = queries.NewNearbyDriversQueryHandler(finder).Handle(t.Context(), query)

	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}
