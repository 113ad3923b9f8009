package rtos

import "errors"

var (
	// ErrResourceExhausted is returned when a primitive, task or timer
	// cannot be created. It is fatal at startup.
	ErrResourceExhausted = errors.New("rtos: resource exhausted")

	// ErrInvalidTask is returned for a task or timer spec that cannot be scheduled.
	ErrInvalidTask = errors.New("rtos: invalid task")

	// ErrHalted is returned by Run once a fatal stack overflow stopped scheduling.
	ErrHalted = errors.New("rtos: scheduler halted")

	// ErrLockTimeout is returned when a bounded lock wait expires.
	ErrLockTimeout = errors.New("rtos: lock timeout")
)
