package service

import "errors"

// Sentinel errors surfaced to handlers. Validation and not-found errors are
// raised before any mutation; conflict errors indicate the at-most-one live
// prediction invariant fired under a concurrent write.
var (
	ErrMarketNotFound      = errors.New("market not found")
	ErrMarketNotOpen       = errors.New("market is not open")
	ErrMarketClosed        = errors.New("market has closed")
	ErrMarketResolved      = errors.New("market already resolved")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserNotApproved     = errors.New("user is not approved")
	ErrInvalidPrediction   = errors.New("prediction must be between 0 and 100")
	ErrInvalidConfidence   = errors.New("confidence must be high, medium or low")
	ErrInvalidOutcome      = errors.New("outcome must be between 0 and 100")
	ErrInvalidSnapshotType = errors.New("snapshot type must be daily, weekly or monthly")
	ErrPredictionConflict  = errors.New("prediction already exists")
)
