package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrSlotTaken is returned when the unique active-slot index rejects a write.
	ErrSlotTaken = errors.New("caregiver already has an active appointment at this date and time")

	// ErrStatusChanged is returned when a conditional update finds the appointment no longer in
	// the status the caller read.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
)
