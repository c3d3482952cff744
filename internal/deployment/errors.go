package deployment

import "errors"

var (
	// ErrUnknownLocation is returned for a location code missing from the zone table.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrNotProvisioned is returned when a machine's addresses are requested
	// before its provisioning was issued.
	ErrNotProvisioned = errors.New("machine not provisioned")

	// ErrStageOrder is returned when a stage is driven before the previous one was issued.
	ErrStageOrder = errors.New("stage issued out of order")

	// ErrNotReady is returned when a readiness probe never succeeded within its attempt bound.
	ErrNotReady = errors.New("machine not ready")
)
