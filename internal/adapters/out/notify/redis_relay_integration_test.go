package notify_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/core/application/events"
	"dispatch/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisRelaySuite struct {
	suite.Suite
	container testcontainers.Container
	addr      string
}

func TestRedisRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRelaySuite))
}

func (s *RedisRelaySuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "6379")
	s.Require().NoError(err)
	s.addr = fmt.Sprintf("%s:%s", host, port.Port())
}

func (s *RedisRelaySuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

// instance wires a hub and a running relay the way one server process does.
func (s *RedisRelaySuite) instance(ctx context.Context, channel string) (*notify.Hub, *notify.RedisRelay) {
	client := redis.NewClient(&redis.Options{Addr: s.addr})
	s.T().Cleanup(func() { _ = client.Close() })

	hub := notify.NewHub(logger.NewNop(), nil)
	relay := notify.NewRedisRelay(client, hub, logger.NewNop(), nil, notify.WithRelayChannel(channel))
	go func() { _ = relay.Run(ctx) }()
	return hub, relay
}

func (s *RedisRelaySuite) TestEventsReachOtherInstancesOnce() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubA, relayA := s.instance(ctx, "dispatch:test:"+t.Name())
	hubB, _ := s.instance(ctx, "dispatch:test:"+t.Name())

	local := hubA.Subscribe(events.Admins())
	remote := hubB.Subscribe(events.Admins(), events.Broadcast())

	// Both relays must be subscribed before publishing.
	time.Sleep(300 * time.Millisecond)

	relayA.Publish(ctx, deleted("o-42"), events.Admins(), events.Broadcast())

	assert.Equal(t, events.OrderDeleted, receive(t, local).Event)
	env := receive(t, remote)
	assert.JSONEq(t, `{"orderId":"o-42","bookingId":"BK1ABCD"}`, string(env.Payload))

	time.Sleep(200 * time.Millisecond)
	assertNothing(t, local)
	assertNothing(t, remote)
}

func (s *RedisRelaySuite) TestUnreachableRedisStillDeliversLocally() {
	t := s.T()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close() //nolint:errcheck

	hub := notify.NewHub(logger.NewNop(), nil)
	relay := notify.NewRedisRelay(client, hub, logger.NewNop(), nil)
	sub := hub.Subscribe(events.Admins())

	require.NotPanics(t, func() { relay.Publish(context.Background(), deleted("o-43"), events.Admins()) })
	assert.Equal(t, events.OrderDeleted, receive(t, sub).Event)
}
