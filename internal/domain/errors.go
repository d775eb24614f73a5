package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrSelectionTooSmall = errors.New("selection too small")
	ErrSelectionTooLarge = errors.New("selection too large")
	ErrCreationInFlight  = errors.New("another creation is in flight")
	ErrNoCreation        = errors.New("no creation to save")
	ErrPollTimeout       = errors.New("render never became ready")
	ErrProviderFailure   = errors.New("provider failure")
)
