package model

import "errors"

var (
	// ErrInsufficientHistory means a series is shorter than an indicator's window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrProviderUnavailable means a data provider could not serve a ticker.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrConfigurationMissing means the batch cannot run at all.
	ErrConfigurationMissing = errors.New("configuration missing")
)
