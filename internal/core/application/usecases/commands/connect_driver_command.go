package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrConnectDriverCommandIsNotConstructed = errors.New(
		"ConnectDriverCommand must be created via NewConnectDriverCommand constructor",
	)
	ErrDisconnectDriverCommandIsNotConstructed = errors.New(
		"DisconnectDriverCommand must be created via NewDisconnectDriverCommand constructor",
	)
)

// ConnectDriverCommand records that a driver opened a live connection.
type ConnectDriverCommand struct {
	driverID     kernel.UUID
	connectionID string

	guard guard.ConstructorGuard
}

// NewConnectDriverCommand creates a command for a socket that just opened. connectionID must be non-empty.
func NewConnectDriverCommand(driverID kernel.UUID, connectionID string) (ConnectDriverCommand, error) {
	connectionID, connErr := requireConnection(connectionID)
	if err := errors.Join(requireID("driverId", driverID), connErr); err != nil {
		return ConnectDriverCommand{}, err
	}

	return ConnectDriverCommand{
		driverID:     driverID,
		connectionID: connectionID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ConnectDriverCommand) Validate() error {
	return c.guard.Validate(ErrConnectDriverCommandIsNotConstructed)
}

func (c ConnectDriverCommand) DriverID() kernel.UUID { return c.driverID }
func (c ConnectDriverCommand) ConnectionID() string  { return c.connectionID }

// DisconnectDriverCommand records that a driver's live connection closed. It only applies
// when connectionID is still the one on record.
type DisconnectDriverCommand struct {
	driverID     kernel.UUID
	connectionID string

	guard guard.ConstructorGuard
}

// NewDisconnectDriverCommand names the socket that closed.
func NewDisconnectDriverCommand(driverID kernel.UUID, connectionID string) (DisconnectDriverCommand, error) {
	connectionID, connErr := requireConnection(connectionID)
	if err := errors.Join(requireID("driverId", driverID), connErr); err != nil {
		return DisconnectDriverCommand{}, err
	}

	return DisconnectDriverCommand{
		driverID:     driverID,
		connectionID: connectionID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c DisconnectDriverCommand) Validate() error {
	return c.guard.Validate(ErrDisconnectDriverCommandIsNotConstructed)
}

func (c DisconnectDriverCommand) DriverID() kernel.UUID { return c.driverID }
func (c DisconnectDriverCommand) ConnectionID() string  { return c.connectionID }

func requireConnection(connectionID string) (string, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return "", driver.ErrConnectionIsRequired
	}
	return connectionID, nil
}
