package services

import "errors"

// Dashboard service errors
var (
	// Active date errors
	ErrInvalidDate      = errors.New("invalid date")
	ErrNoActiveDate     = errors.New("no active date available")
	ErrBulletinNotFound = errors.New("bulletin not found")

	// Lookup errors
	ErrUnknownDataset    = errors.New("unknown dataset")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrInvalidRegion     = errors.New("invalid region")
	ErrInvalidWeeks      = errors.New("invalid weeks")
)
